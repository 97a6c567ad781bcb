package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/helios-energy/helios-admin/internal/app"
	"github.com/helios-energy/helios-admin/internal/audit"
	"github.com/helios-energy/helios-admin/internal/auth"
	"github.com/helios-energy/helios-admin/internal/clients"
	"github.com/helios-energy/helios-admin/internal/inventory"
	"github.com/helios-energy/helios-admin/internal/observability"
	"github.com/helios-energy/helios-admin/internal/platform/cache"
	"github.com/helios-energy/helios-admin/internal/platform/db"
	"github.com/helios-energy/helios-admin/internal/quotations"
	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/tickets"
	"github.com/helios-energy/helios-admin/internal/users"
	"github.com/helios-energy/helios-admin/jobs"
	"github.com/helios-energy/helios-admin/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis backs token storage, so a dead instance is fatal here.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(redisClient, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authMiddleware := auth.Middleware{Service: authService, Tokens: tokens, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMiddleware)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo)
	rbacMiddleware := rbac.Middleware{}
	rolesHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	clientsRepo := clients.NewRepository(dbpool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	quotationsRepo := quotations.NewRepository(dbpool)
	quotationsService := quotations.NewService(quotationsRepo, clientsRepo)
	quotationsHandler := quotations.NewHandler(logger, quotationsService, quotations.NewPDFBuilder(reportClient))

	ticketsRepo := tickets.NewRepository(dbpool)
	ticketsService := tickets.NewService(ticketsRepo, clientsRepo)
	ticketsHandler := tickets.NewHandler(logger, ticketsService)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		RolesHandler:      rolesHandler,
		UsersHandler:      usersHandler,
		ClientsHandler:    clientsHandler,
		InventoryHandler:  inventoryHandler,
		QuotationsHandler: quotationsHandler,
		TicketsHandler:    ticketsHandler,
		AuditHandler:      auditHandler,
		AuditRepo:         auditRepo,
		JobHandler:        jobHandler,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
