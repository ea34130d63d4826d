package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/redmonkez12/marketplace-api/docs" // Swagger docs
	"github.com/redmonkez12/marketplace-api/internal/app"
	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/config"
	httpServer "github.com/redmonkez12/marketplace-api/internal/http"
	"github.com/redmonkez12/marketplace-api/internal/logging"
	"github.com/redmonkez12/marketplace-api/internal/offer"
	"github.com/redmonkez12/marketplace-api/internal/tracing"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

// @title           Marketplace API
// @version         1.0
// @description     Second-hand marketplace backend: accounts, offers and their pictures.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the account token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"image_store", cfg.Storage.Driver,
	)

	ctx := context.Background()

	// Initialize tracing
	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shutdown tracing", "error", err)
		}
	}()

	// Initialize repositories, image store and services
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Initialize HTTP handlers
	userHandler := user.NewHandler(application.UserService, logger, cfg.Upload.MaxMemory, cfg.Auth.EnforceOwnership)
	offerHandler := offer.NewHandler(application.OfferService, cfg.Search, cfg.Upload.MaxMemory)
	authMiddleware := auth.NewMiddleware(application.UserService)

	// Initialize router
	router := httpServer.NewRouter(cfg, userHandler, offerHandler, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		otelhttp.NewHandler(router, "http.server"),
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
