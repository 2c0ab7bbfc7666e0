package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hr-service/internal/api/http"
	"github.com/spec-kit/hr-service/internal/api/http/handlers"
	"github.com/spec-kit/hr-service/internal/audit"
	"github.com/spec-kit/hr-service/internal/auth"
	"github.com/spec-kit/hr-service/internal/cascade"
	"github.com/spec-kit/hr-service/internal/config"
	"github.com/spec-kit/hr-service/internal/domain"
	"github.com/spec-kit/hr-service/internal/events"
	"github.com/spec-kit/hr-service/internal/observability"
	"github.com/spec-kit/hr-service/internal/persistence"
	"github.com/spec-kit/hr-service/internal/service"
	"github.com/spec-kit/hr-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	backends := persistence.NewBackends(pg, redis, cfg.Redis)
	stores := backends.Stores
	dispatcher := events.NewInMemoryDispatcher()

	counter := cascade.NewCounter(stores[domain.KindDepartment], stores[domain.KindEmployeeProfile], backends.RepairQueue, metrics, logger)
	resources := service.NewResourceService(service.ResourceDependencies{
		Resources:  service.NewResources(stores),
		Audit:      audit.NewWriter(backends.Audit, logger),
		Cascade:    counter,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Resources:   resources,
		Credentials: backends.Credentials,
		Tokens:      tokens,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	if err := authService.EnsureAdmin(ctx, cfg.Auth); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	guards := service.NewGuardRules(stores[domain.KindUser], stores[domain.KindEmployeeProfile], stores[domain.KindPayroll])
	employeeService := service.NewEmployeeService(stores[domain.KindEmployeeProfile], stores[domain.KindUser], guards)
	userService := service.NewUserService(stores[domain.KindUser], stores[domain.KindEmployeeProfile])
	statsService := service.NewStatsService(stores)
	auditService := service.NewAuditService(backends.Audit, audit.NewResolver(stores))

	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), cfg.Notification.QueueSize, logger)
	notifications.Subscribe(dispatcher)
	go notifications.Run(ctx)
	repairWorker := worker.NewRepairWorker(counter, cfg.Cascade.RepairInterval(), cfg.Cascade.RepairBatchSize, logger)
	go repairWorker.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewResourceHandler(domain.KindUser, resources),
		Profiles:       handlers.NewResourceHandler(domain.KindEmployeeProfile, resources),
		Departments:    handlers.NewResourceHandler(domain.KindDepartment, resources),
		Payrolls:       handlers.NewResourceHandler(domain.KindPayroll, resources),
		Employees:      handlers.NewEmployeesHandler(employeeService, userService, statsService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, stores[domain.KindUser]),
		Gatherer:       registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
