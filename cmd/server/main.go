package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicdesk/internal/app"
	"clinicdesk/internal/handlers"
	"clinicdesk/internal/logger"
	"clinicdesk/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init(os.Getenv("ENVIRONMENT"))
	log := logger.New("main").Function("main")

	app, err := app.New()
	if err != nil {
		log.Er("failed to initialize app", err)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), app.Config)
	if err != nil {
		log.Er("failed to set up tracing, continuing without it", err)
	}

	server := fiber.New(fiber.Config{
		AppName:      "clinicdesk " + app.Config.GeneralVersion,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	})
	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: app.Config.CorsOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	if err := handlers.Router(server, app); err != nil {
		log.Er("failed to register routes", err)
		_ = app.Close()
		os.Exit(1)
	}

	go func() {
		address := fmt.Sprintf(":%d", app.Config.ServerPort)
		log.Info("Starting server", "address", address, "environment", app.Config.Environment)
		if err := server.Listen(address); err != nil {
			log.Er("server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Er("failed to shut down server", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(ctx); err != nil {
		log.Er("failed to flush traces", err)
	}

	if err := app.Close(); err != nil {
		log.Er("failed to close app", err)
	}
	log.Info("Server stopped")
}
