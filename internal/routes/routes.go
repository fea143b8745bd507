// Package routes wires stores, services and handlers onto the Fiber app.
package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/linguachat/linguachat/internal/auth"
	"github.com/linguachat/linguachat/internal/config"
	"github.com/linguachat/linguachat/internal/data"
	"github.com/linguachat/linguachat/internal/db"
	"github.com/linguachat/linguachat/internal/handlers"
	"github.com/linguachat/linguachat/internal/middleware"
	"github.com/linguachat/linguachat/internal/services"
	"github.com/linguachat/linguachat/internal/translate"
)

// Register builds the full dependency graph and mounts all routes.
// The returned cleanup stops background goroutines owned by middleware.
func Register(app *fiber.App, cfg *config.Config, dbClient *db.Client, logger *slog.Logger) func() {
	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	chatsStore := data.NewChatsStore(dbClient.ChatsCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	var jwtMgr *auth.JWTManager
	if len(cfg.JWTKeys) > 0 {
		jwtMgr = auth.NewJWTManagerFromKeys(cfg.JWTKeys, cfg.JWTActiveKID, cfg.TokenTTL)
	} else {
		jwtMgr = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	}

	translator := translate.NewGeminiClient(translate.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Logger:  logger,
	})

	chatService := services.NewChatService(usersStore, chatsStore, msgsStore, translator, logger)

	authHandler := handlers.NewAuthHandler(usersStore, jwtMgr, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)

	// small burst so a couple of quick retries still pass
	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, 1*time.Minute)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authGroup := api.Group("/auth", middleware.RateLimit(limiterStore))
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	chats := api.Group("/chats", middleware.AuthRequired(jwtMgr))
	chats.Get("/searchUser", chatHandler.SearchUsers)
	chats.Post("/startChat", chatHandler.StartChat)
	chats.Post("/sendMessage", chatHandler.SendMessage)
	chats.Get("/messages/:chatId", chatHandler.GetMessages)
	chats.Get("/userChats/:userId", chatHandler.GetUserChats)

	return limiterStore.Stop
}
