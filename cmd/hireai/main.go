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

	"github.com/protocolai/hireai/internal/app"
	"github.com/protocolai/hireai/internal/applications"
	"github.com/protocolai/hireai/internal/audit"
	"github.com/protocolai/hireai/internal/auth"
	"github.com/protocolai/hireai/internal/bootstrap"
	"github.com/protocolai/hireai/internal/branches"
	"github.com/protocolai/hireai/internal/jobposts"
	"github.com/protocolai/hireai/internal/notifications"
	"github.com/protocolai/hireai/internal/observability"
	"github.com/protocolai/hireai/internal/platform/cache"
	"github.com/protocolai/hireai/internal/platform/db"
	"github.com/protocolai/hireai/internal/ranking"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/roles"
	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
	"github.com/protocolai/hireai/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
		MaxConns:        cfg.PGMaxConns,
		MinConns:        cfg.PGMinConns,
		MaxConnLifetime: cfg.PGMaxConnLifetime,
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	metrics := observability.NewMetrics()

	roleRepo := roles.NewRepository(dbpool).WithLogger(logger)
	userRepo := users.NewRepository(dbpool)
	branchRepo := branches.NewRepository(dbpool)

	seeder := bootstrap.New(roleRepo, branchRepo, userRepo, bootstrap.Config{
		AdminEmail:    cfg.BootstrapAdminEmail,
		AdminPassword: cfg.BootstrapAdminPassword,
		AdminName:     cfg.BootstrapAdminName,
	}, logger)
	if err := seeder.Run(ctx); err != nil {
		logger.Error("bootstrap", slog.Any("error", err))
		os.Exit(1)
	}

	rbacService := rbac.NewService(roleRepo, userRepo, logger)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
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
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(auth.NewRepository(dbpool))
	roleService := roles.NewService(roleRepo, auditLogger).WithLogger(logger)
	userService := users.NewService(userRepo, roleRepo, auditLogger).
		WithSessionRevoker(sessionManager).
		WithLogger(logger)
	branchService := branches.NewService(branchRepo, branches.Options{
		EmailDomain: cfg.BranchEmailDomain,
		Audit:       auditLogger,
	})
	jobPostService := jobposts.NewService(jobposts.NewRepository(dbpool), branches.DefaultBranchID)
	notificationService := notifications.NewService(notifications.NewRepository(dbpool))
	applicationService := applications.NewService(applications.NewRepository(dbpool), jobPostService, applications.Options{
		PortalURL:   cfg.PortalURL,
		Emails:      jobClient,
		Notifier:    notificationService,
		Idempotency: idempotencyStore,
		Audit:       auditLogger,
		Logger:      logger,
	})
	rankingService := ranking.NewService(jobPostService, applicationService, ranking.Options{
		DefaultBudget: cfg.RankingDefaultBudget,
	}, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		RBACMiddleware:      rbacMiddleware,
		AuthHandler:         auth.NewHandler(logger, authService, rbacService, sessionManager, csrfManager),
		RolesHandler:        roles.NewHandler(logger, roleService, rbacMiddleware),
		UsersHandler:        users.NewHandler(logger, userService, rbacMiddleware),
		BranchesHandler:     branches.NewHandler(logger, branchService, rbacMiddleware),
		JobPostsHandler:     jobposts.NewHandler(logger, jobPostService, rbacMiddleware),
		ApplicationsHandler: applications.NewHandler(logger, applicationService, rbacMiddleware),
		NotificationHandler: notifications.NewHandler(logger, notificationService, rbacMiddleware),
		RankingHandler:      ranking.NewHandler(logger, rankingService, rbacMiddleware),
		AuditHandler:        audit.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), rbacMiddleware),
		JobHandler:          jobs.NewHandler(inspector, logger),
		Metrics:             metrics,
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
