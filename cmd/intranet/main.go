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

	"github.com/polizei-portal/intranet/internal/app"
	"github.com/polizei-portal/intranet/internal/auth"
	"github.com/polizei-portal/intranet/internal/laws"
	"github.com/polizei-portal/intranet/internal/observability"
	"github.com/polizei-portal/intranet/internal/platform/cache"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/roles"
	"github.com/polizei-portal/intranet/internal/seed"
	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
	"github.com/polizei-portal/intranet/jobs"
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

	store, closeStore, err := app.OpenStore(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Error("open document store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	metrics := observability.NewMetrics()

	catalog := rbac.NewCatalog(logger)
	if err := catalog.Start(ctx, store); err != nil {
		logger.Error("subscribe roles", slog.Any("error", err))
		os.Exit(1)
	}
	defer catalog.Close()
	rbacMiddleware := rbac.Middleware{Roles: catalog, Logger: logger, Recorder: metrics}

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	userRepo := users.NewRepository(store)
	authService := auth.NewService(userRepo, cfg.BcryptCost)

	if cfg.BootstrapOnStart {
		seed.NewBootstrapper(store, logger, seed.Config{
			AdminBadge:    cfg.BootstrapAdminBadge,
			AdminPassword: cfg.BootstrapAdminPassword,
		}, authService).RunAndLog(ctx)
	}

	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, catalog, metrics)
	usersHandler := users.NewHandler(logger, users.NewService(userRepo, catalog), rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(store)), rbacMiddleware)
	lawsHandler := laws.NewHandler(logger, laws.NewService(laws.NewRepository(store)), rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(rbacMiddleware)

	redisOpts := cache.QueueOpt(cfg.RedisAddr)
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, rbacMiddleware, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		UserLoader:         userRepo,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		LawsHandler:        lawsHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
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
