package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sowhat1234/yazamutforum/internal/config"
	"github.com/sowhat1234/yazamutforum/internal/db"
	"github.com/sowhat1234/yazamutforum/internal/handlers"
	"github.com/sowhat1234/yazamutforum/internal/middleware"
	"github.com/sowhat1234/yazamutforum/internal/service"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "forum: ", log.LstdFlags|log.Lshortfile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repository
	repo, err := db.NewRepository(cfg)
	if err != nil {
		logger.Fatalf("Database initialization error: %v", err)
	}
	defer repo.Close()

	// Run migrations
	if err := repo.RunMigrations(ctx); err != nil {
		logger.Fatalf("Migration error: %v", err)
	}

	// Start periodic session cleanup
	go cleanSessions(ctx, repo, cfg.SessionCleanupInterval, logger)

	// Set up routes
	api := handlers.NewAPI(service.New(repo, logger), logger)
	identify := middleware.Identify(repo, cfg.Auth.JWTSecret, cfg.Auth.SessionCookie, logger)

	mux := http.NewServeMux()
	mux.Handle(handlers.Prefix, identify(api))
	mux.HandleFunc("/healthz", handlers.Health(repo, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	logger.Printf("Server started at http://localhost:%s (%d procedures, driver %s)",
		cfg.Port, len(api.Procedures()), cfg.Database.Driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server start error: %v", err)
	}
	logger.Printf("Server stopped")
}

func cleanSessions(ctx context.Context, repo *db.Repository, every time.Duration, logger *log.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.CleanExpiredSessions(ctx)
			if err != nil {
				logger.Printf("Session cleanup error: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("Removed %d expired sessions", n)
			}
		}
	}
}
