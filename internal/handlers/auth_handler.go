package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/linguachat/linguachat/internal/auth"
	"github.com/linguachat/linguachat/internal/data"
)

type userAccountStore interface {
	CreateUser(ctx context.Context, email, hashedPassword, name, lang, phone string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
}

// AuthHandler serves signup and login.
type AuthHandler struct {
	users  userAccountStore
	jwtMgr *auth.JWTManager
	logger *slog.Logger
}

// NewAuthHandler returns a wired AuthHandler.
func NewAuthHandler(users userAccountStore, jwtMgr *auth.JWTManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{users: users, jwtMgr: jwtMgr, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Lang     string `json:"lang"`
	Phone    string `json:"phone"`
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Lang == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Missing fields",
		})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to process password",
		})
	}

	user, err := h.users.CreateUser(c.Context(), req.Email, hash, req.Name, req.Lang, req.Phone)
	if err != nil {
		if errors.Is(err, data.ErrUserExists) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": "Email already registered",
			})
		}
		h.logger.ErrorContext(c.Context(), "create user failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Failed to create user",
		})
	}

	return c.JSON(fiber.Map{"success": true, "userId": user.ID.Hex()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a signed JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false, "error": "Invalid request body",
		})
	}

	user, err := h.users.GetUserByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false, "error": "User not found",
			})
		}
		h.logger.ErrorContext(c.Context(), "login lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Login failed",
		})
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "Invalid password",
		})
	}

	token, _, err := h.jwtMgr.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "token generation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "Login failed",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"userId":  user.ID.Hex(),
		"name":    user.Name,
		"lang":    user.Lang,
	})
}
