package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statarena/server/internal/api"
	"github.com/statarena/server/internal/config"
	"github.com/statarena/server/internal/metrics"
	"github.com/statarena/server/internal/repository"
	"github.com/statarena/server/internal/service"
	"github.com/statarena/server/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := utils.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// run serves until a shutdown signal arrives or the listener fails. Deferred
// cleanup always runs before main decides the exit code.
func run(logger *utils.Logger) error {
	// Load configuration
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	gin.SetMode(cfg.Server.Mode)

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	monitor := metrics.NewMonitor()
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, monitor)

	// Create API handler and router
	handler := api.NewHandler(svc, logger, monitor)
	router := api.NewRouter(handler, cfg.Auth.JWTSecret, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down: %v", err)
	}
	logger.Info("Server stopped")
	return nil
}
