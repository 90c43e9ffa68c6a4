// Package main is the entry point for the HealthLine server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthline/internal/config"
	"healthline/internal/database"
	"healthline/internal/handlers"
	"healthline/internal/render"
	"healthline/internal/router"
	"healthline/internal/session"
	"healthline/internal/storage"
	"healthline/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	valkeyClient, err := session.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session cookies are HTTPS-only outside development.
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	articleStore := store.NewArticleStore(db)
	categoryStore := store.NewCategoryStore(db)
	subCategoryStore := store.NewSubCategoryStore(db)
	newsletterStore := store.NewNewsletterStore(db)
	userStore := store.NewUserStore(db)
	profileStore := store.NewProfileStore(db)

	// S3 storage is optional; without it the app accepts image URLs only.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	publicHandlers := handlers.NewPublic(renderer, articleStore, categoryStore, subCategoryStore, profileStore)
	accountHandlers := handlers.NewAccount(renderer, sessionStore, userStore, profileStore, storageClient)
	actionHandlers := handlers.NewActions(articleStore, profileStore, newsletterStore)
	adminHandlers := handlers.NewAdmin(renderer, articleStore, categoryStore, subCategoryStore, newsletterStore, userStore, storageClient)
	adminAuthHandlers := handlers.NewAdminAuth(renderer, sessionStore, userStore)

	r, loginLimiter := router.New(sessionStore, publicHandlers, accountHandlers, actionHandlers, adminHandlers, adminAuthHandlers)
	defer loginLimiter.Stop()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
