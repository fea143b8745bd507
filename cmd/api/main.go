package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/linguachat/linguachat/internal/config"
	"github.com/linguachat/linguachat/internal/db"
	"github.com/linguachat/linguachat/internal/routes"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = dbClient.Close(context.Background())
	}()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	cleanup := routes.Register(app, cfg, dbClient, log)
	defer cleanup()

	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server exit", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. In-flight sends run to
	// completion within the shutdown window.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
