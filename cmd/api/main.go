package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ArowuTest/tourbook-backend/api/routes"
	"github.com/ArowuTest/tourbook-backend/internal/app"
	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/internal/handlers"
	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/ArowuTest/tourbook-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := application.Close(shutdownCtx); err != nil {
			zlog.Error("Error closing connections", zap.Error(err))
		}
	}()

	handlerDeps := routes.HandlerDependencies{
		CampaignHandler:       handlers.NewCampaignHandler(application.Campaigns, application.Notifications, zlog),
		ReservationHandler:    handlers.NewReservationHandler(application.Reservations, zlog),
		NotificationHandler:   handlers.NewNotificationHandler(application.Notifications, zlog),
		SystemSettingsHandler: handlers.NewSystemSettingsHandler(application.Settings, zlog),
		UserHandler:           handlers.NewUserHandler(application.Users, zlog),
	}
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	router := routes.SetupRouter(cfg, handlerDeps, tokens, zlog)

	// Scheduled campaigns are promoted in-process
	go application.Scheduler.Run(ctx, cfg.Scheduler.Interval)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("listen failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exiting")
}
