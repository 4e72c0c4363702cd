package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/config"
	"github.com/niouspark-cmd/student-hub-sub000/internal/db"
	httpHandlers "github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers"
	httpRouter "github.com/niouspark-cmd/student-hub-sub000/internal/http/router"
	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
	"github.com/niouspark-cmd/student-hub-sub000/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Repositories.
	orderRepo := repository.NewOrderRepository(dbConn)
	escrowRepo := repository.NewEscrowRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)
	auditRepo := repository.NewAuditRepository(dbConn)
	runnerRepo := repository.NewRunnerRepository(dbConn)

	// Websocket hub feeding connected runners.
	hub := ws.NewHub(ctx)
	go hub.Run()
	notifier := ws.NewMissionNotifier(hub)

	// Services.
	settingsService := service.NewSettingsService(settingsRepo, cfg.SettingsCacheTTL)
	orderService := service.NewOrderService(orderRepo, escrowRepo, settingsService, notifier)
	missionService := service.NewMissionService(orderRepo, runnerRepo, settingsService, notifier)
	walletService := service.NewWalletService(walletRepo)
	adminService := service.NewAdminService(orderRepo, escrowRepo, walletRepo, auditRepo, settingsService)

	// HTTP handlers.
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	paymentHandler := httpHandlers.NewPaymentHandler(orderService)
	missionHandler := httpHandlers.NewMissionHandler(missionService)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	adminHandler := httpHandlers.NewAdminHandler(adminService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, missionService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(cfg, orderHandler, paymentHandler, missionHandler, walletHandler, adminHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: error closing database: %v", err)
	}
}
