package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httpapi "github.com/fieldops/deployment-service/internal/api/http"
	"github.com/fieldops/deployment-service/internal/api/http/handlers"
	"github.com/fieldops/deployment-service/internal/auth"
	"github.com/fieldops/deployment-service/internal/authz"
	"github.com/fieldops/deployment-service/internal/config"
	"github.com/fieldops/deployment-service/internal/confirm"
	"github.com/fieldops/deployment-service/internal/events"
	"github.com/fieldops/deployment-service/internal/mail"
	"github.com/fieldops/deployment-service/internal/observability"
	"github.com/fieldops/deployment-service/internal/persistence"
	"github.com/fieldops/deployment-service/internal/repository"
	"github.com/fieldops/deployment-service/internal/service"
	"github.com/fieldops/deployment-service/internal/worker"
	"github.com/fieldops/deployment-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations && postgres.Pool != nil {
		if err := persistence.ApplyMigrations(ctx, postgres.Pool, migrations.Files, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	accountRepo := repository.NewAccountRepository(postgres.Pool)
	customerRepo := repository.NewCustomerRepository(postgres.Pool)
	addressRepo := repository.NewAddressRepository(postgres.Pool)
	adminRepo := repository.NewAdminRepository(postgres.Pool)
	deploymentRepo := repository.NewDeploymentRepository(postgres.Pool)
	stagedRepo := repository.NewStagedDeploymentRepository(postgres.Pool)

	resolver := authz.NewResolver(adminRepo, redis.Client, cfg.Auth.ScopeCacheTTL(), logger)

	codec, err := confirm.NewCodec(cfg.Confirm.Passphrase, cfg.Confirm.Iterations)
	if err != nil {
		logger.Fatal("confirmation codec init failed", zap.Error(err))
	}

	var mailer mail.Mailer
	if cfg.Mail.APIKey != "" {
		mailer = mail.NewMailgunMailer(cfg.Mail.Domain, cfg.Mail.APIKey, logger)
	} else {
		mailer = mail.NewLogMailer(logger)
	}

	dispatcher := events.NewInMemoryDispatcher()

	deploymentService := service.NewDeploymentService(service.DeploymentDependencies{
		DeploymentRepo: deploymentRepo,
		AddressRepo:    addressRepo,
		CustomerRepo:   customerRepo,
		Resolver:       resolver,
		Dispatcher:     dispatcher,
	})
	checklistService := service.NewChecklistService(deploymentRepo, resolver, dispatcher)
	metadataService := service.NewMetadataService(customerRepo, deploymentRepo, resolver)
	confirmationService := service.NewConfirmationService(service.ConfirmationDependencies{
		StagedRepo:     stagedRepo,
		DeploymentRepo: deploymentRepo,
		AddressRepo:    addressRepo,
		CustomerRepo:   customerRepo,
		Resolver:       resolver,
		Codec:          codec,
		Dispatcher:     dispatcher,
		PublicBaseURL:  cfg.App.PublicBaseURL,
	})
	notificationService := service.NewNotificationService(dispatcher, mailer, logger, metrics, cfg.Mail, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, accountRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
		ErrorHandler: httpapi.NewErrorHandler(logger, metrics),
	})
	app.Use(recoverer.New())
	app.Use(observability.RequestLogger(logger, metrics))

	httpapi.RegisterRoutes(app, httpapi.RouterDependencies{
		AuthMiddleware: authMiddleware,
		Deployments:    handlers.NewDeploymentsHandler(deploymentService),
		Checklist:      handlers.NewChecklistHandler(checklistService),
		Metadata:       handlers.NewMetadataHandler(metadataService),
		Confirm:        handlers.NewConfirmHandler(confirmationService),
		Health:         handlers.NewHealthHandler(postgres, redis, cfg.App.Version),
		Registry:       registry,
	})

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.String("env", cfg.App.Env),
			zap.String("version", cfg.App.Version),
		)
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
