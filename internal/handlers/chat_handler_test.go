package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/linguachat/linguachat/internal/data"
	"github.com/linguachat/linguachat/internal/services"
)

type stubChatService struct {
	chatResult     *data.Chat
	chatErr        error
	messageResult  *data.Message
	messageErr     error
	messagesResult []*data.Message
	messagesErr    error
	chatsResult    []*data.ChatSummary
	chatsErr       error
	usersResult    []*data.User
	usersErr       error

	lastUserA     string
	lastUserB     string
	lastChatID    string
	lastSenderID  string
	lastText      string
	lastQuery     string
	lastRequester string
}

func (s *stubChatService) StartOrGetChat(_ context.Context, userA, userB string) (*data.Chat, error) {
	s.lastUserA, s.lastUserB = userA, userB
	return s.chatResult, s.chatErr
}

func (s *stubChatService) SendMessage(_ context.Context, chatID, senderID, text string) (*data.Message, error) {
	s.lastChatID, s.lastSenderID, s.lastText = chatID, senderID, text
	return s.messageResult, s.messageErr
}

func (s *stubChatService) ListMessages(_ context.Context, chatID string) ([]*data.Message, error) {
	s.lastChatID = chatID
	return s.messagesResult, s.messagesErr
}

func (s *stubChatService) ListChatsForUser(_ context.Context, userID string) ([]*data.ChatSummary, error) {
	s.lastRequester = userID
	return s.chatsResult, s.chatsErr
}

func (s *stubChatService) SearchUsers(_ context.Context, query, requesterID string) ([]*data.User, error) {
	s.lastQuery, s.lastRequester = query, requesterID
	return s.usersResult, s.usersErr
}

func newChatApp(service *stubChatService) *fiber.App {
	handler := NewChatHandler(service, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "requester-1")
		return c.Next()
	})
	app.Get("/api/chats/searchUser", handler.SearchUsers)
	app.Post("/api/chats/startChat", handler.StartChat)
	app.Post("/api/chats/sendMessage", handler.SendMessage)
	app.Get("/api/chats/messages/:chatId", handler.GetMessages)
	app.Get("/api/chats/userChats/:userId", handler.GetUserChats)
	return app
}

func TestStartChatReturnsChat(t *testing.T) {
	service := &stubChatService{
		chatResult: &data.Chat{
			ID:           "u1:u2",
			Members:      []string{"u1", "u2"},
			LastMessages: map[string]string{},
		},
	}
	app := newChatApp(service)

	body := strings.NewReader(`{"userA":"u1","userB":"u2"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chats/startChat", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserA != "u1" || service.lastUserB != "u2" {
		t.Fatalf("unexpected pair: %q %q", service.lastUserA, service.lastUserB)
	}

	var out struct {
		Success bool      `json:"success"`
		Chat    data.Chat `json:"chat"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.Success || out.Chat.ID != "u1:u2" {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestSendMessageReturnsPersistedMessage(t *testing.T) {
	service := &stubChatService{
		messageResult: &data.Message{
			ChatID:         "u1:u2",
			SenderID:       "u1",
			TextOriginal:   "hola amigo",
			TextCommon:     "hola amigo",
			TextTranslated: "hello friend",
			Translation:    data.TranslationOK,
			CreatedAt:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	app := newChatApp(service)

	body := strings.NewReader(`{"chatId":"u1:u2","senderId":"u1","text":"hola amigo"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chats/sendMessage", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastText != "hola amigo" {
		t.Fatalf("unexpected text: %q", service.lastText)
	}

	var out struct {
		Success bool         `json:"success"`
		Message data.Message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Message.TextTranslated != "hello friend" {
		t.Fatalf("unexpected message: %+v", out.Message)
	}
}

func TestSendMessageMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidInput, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := newChatApp(&stubChatService{messageErr: tc.err})

		body := strings.NewReader(`{"chatId":"c","senderId":"s","text":"t"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/chats/sendMessage", body)
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != tc.want {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.want, resp.StatusCode)
		}
	}
}

func TestSearchUsersPassesRequesterFromLocals(t *testing.T) {
	service := &stubChatService{
		usersResult: []*data.User{{Name: "Annette", Email: "annette@example.com"}},
	}
	app := newChatApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/searchUser?query=ann", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastQuery != "ann" || service.lastRequester != "requester-1" {
		t.Fatalf("unexpected search args: %q %q", service.lastQuery, service.lastRequester)
	}
}

func TestSearchUsersMissingQuery(t *testing.T) {
	app := newChatApp(&stubChatService{usersErr: services.ErrInvalidInput})

	req := httptest.NewRequest(http.MethodGet, "/api/chats/searchUser", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetMessagesReturnsEmptyListNotNull(t *testing.T) {
	app := newChatApp(&stubChatService{})

	req := httptest.NewRequest(http.MethodGet, "/api/chats/messages/u1:u2", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(out.Messages) != "[]" {
		t.Fatalf("expected empty array, got %s", out.Messages)
	}
}

func TestGetUserChatsReturnsSummaries(t *testing.T) {
	service := &stubChatService{
		chatsResult: []*data.ChatSummary{
			{ChatID: "u1:u2", PartnerID: "u2", PartnerName: "Sofia", LastMessage: "hola amigo"},
		},
	}
	app := newChatApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/chats/userChats/u1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if service.lastRequester != "u1" {
		t.Fatalf("unexpected user id: %q", service.lastRequester)
	}

	var out struct {
		Chats []data.ChatSummary `json:"chats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Chats) != 1 || out.Chats[0].PartnerName != "Sofia" {
		t.Fatalf("unexpected chats: %+v", out.Chats)
	}
}
