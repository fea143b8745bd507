package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/linguachat/linguachat/internal/data"
	"github.com/linguachat/linguachat/internal/services"
)

type chatApplicationService interface {
	StartOrGetChat(ctx context.Context, userA, userB string) (*data.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID, text string) (*data.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]*data.Message, error)
	ListChatsForUser(ctx context.Context, userID string) ([]*data.ChatSummary, error)
	SearchUsers(ctx context.Context, query, requesterID string) ([]*data.User, error)
}

// ChatHandler serves the chat API: user search, chat creation, message
// send and the two listings.
type ChatHandler struct {
	service chatApplicationService
	logger  *slog.Logger
}

// NewChatHandler returns a wired ChatHandler.
func NewChatHandler(service chatApplicationService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{service: service, logger: logger}
}

// SearchUsers finds users by name/email/phone substring, excluding the
// requester.
func (h *ChatHandler) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	requesterID, _ := c.Locals("user_id").(string)

	users, err := h.service.SearchUsers(c.Context(), query, requesterID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": "Query missing",
			})
		}
		h.logger.ErrorContext(c.Context(), "searchUser failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Search failed",
		})
	}

	return c.JSON(fiber.Map{"success": true, "users": users})
}

type startChatRequest struct {
	UserA string `json:"userA"`
	UserB string `json:"userB"`
}

// StartChat idempotently creates or returns the chat between two users.
func (h *ChatHandler) StartChat(c *fiber.Ctx) error {
	var req startChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	chat, err := h.service.StartOrGetChat(c.Context(), req.UserA, req.UserB)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "chat": chat})
}

type sendMessageRequest struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

// SendMessage runs the delivery pipeline and returns the persisted
// message with all three text variants.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	// An accepted send runs to completion even if the client disconnects;
	// the translation retry loop must not be cut short by a dropped
	// connection.
	ctx := context.WithoutCancel(c.Context())

	msg, err := h.service.SendMessage(ctx, req.ChatID, req.SenderID, req.Text)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": msg})
}

// GetMessages returns a chat's messages in chronological order.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	messages, err := h.service.ListMessages(c.Context(), c.Params("chatId"))
	if err != nil {
		return h.mapError(c, err)
	}

	if messages == nil {
		messages = []*data.Message{}
	}
	return c.JSON(fiber.Map{"success": true, "messages": messages})
}

// GetUserChats returns the caller's inbox, most recently active first.
func (h *ChatHandler) GetUserChats(c *fiber.Ctx) error {
	chats, err := h.service.ListChatsForUser(c.Context(), c.Params("userId"))
	if err != nil {
		return h.mapError(c, err)
	}

	if chats == nil {
		chats = []*data.ChatSummary{}
	}
	return c.JSON(fiber.Map{"success": true, "chats": chats})
}

func (h *ChatHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Missing fields",
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false, "error": "Chat not found",
		})
	default:
		h.logger.ErrorContext(c.Context(), "chat request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Internal server error",
		})
	}
}
