package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boulevard/bicycles/internal/apierr"
	"github.com/boulevard/bicycles/internal/config"
	"github.com/boulevard/bicycles/internal/handler"
	"github.com/boulevard/bicycles/internal/metrics"
	"github.com/boulevard/bicycles/internal/repository"
	"github.com/boulevard/bicycles/internal/service"
	"github.com/boulevard/bicycles/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			slog.Error("failed to disconnect database", "error", err)
		}
	}()

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	slog.Info("database connected", "database", cfg.MongoDatabase)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshSecret: cfg.JWTRefreshSecret,
		RefreshTTL:    cfg.JWTRefreshTTL,
		BcryptCost:    cfg.BcryptCost,
	})
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo)
	userSvc := service.NewUserService(userRepo)

	v := validation.New()
	m := metrics.New()
	errs := handler.NewErrorHandler(apierr.New(apierr.Config{ExposeStack: cfg.IsDevelopment()}), m)

	e := handler.NewServer(
		handler.ServerConfig{FrontendURL: cfg.FrontendURL, BodyLimit: cfg.BodyLimit},
		errs, v, m,
		handler.Handlers{
			Products: handler.NewProductHandler(productSvc, v),
			Orders:   handler.NewOrderHandler(orderSvc, v),
			Auth:     handler.NewAuthHandler(authSvc, v, !cfg.IsDevelopment()),
			Users:    handler.NewUserHandler(userSvc),
			Tokens:   authSvc,
		},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func setupLogger(cfg config.Config) {
	var h slog.Handler
	if cfg.IsDevelopment() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(h))
}
