package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/misd-it/misdesk/internal/ai"
	httptransport "github.com/misd-it/misdesk/internal/api/http"
	"github.com/misd-it/misdesk/internal/api/http/handlers"
	"github.com/misd-it/misdesk/internal/auth"
	"github.com/misd-it/misdesk/internal/config"
	"github.com/misd-it/misdesk/internal/events"
	"github.com/misd-it/misdesk/internal/mailer"
	"github.com/misd-it/misdesk/internal/observability"
	"github.com/misd-it/misdesk/internal/persistence"
	"github.com/misd-it/misdesk/internal/repository"
	"github.com/misd-it/misdesk/internal/service"
	"github.com/misd-it/misdesk/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	filerRepo := repository.NewFilerRepository(pool)

	var roleCache auth.RoleCache
	if rc := persistence.NewRoleCache(rdb, logger); rc != nil {
		roleCache = rc
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	resolver := auth.NewResolver(profileRepo, roleCache, logger)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, resolver)

	var classifier ai.Classifier
	if gc := ai.NewGeminiClassifier(cfg.AI); gc != nil {
		classifier = gc
	}

	var sender mailer.Sender
	if hs := mailer.NewHTTPSender(cfg.Mail); hs != nil {
		sender = hs
	}

	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		ProfileRepo:    profileRepo,
		DepartmentRepo: departmentRepo,
		FilerRepo:      filerRepo,
		Classifier:     classifier,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	staffService := service.NewStaffService(cfg.Auth, service.StaffDependencies{
		ProfileRepo: profileRepo,
		TicketRepo:  ticketRepo,
		Tokens:      tokenManager,
		RoleCache:   roleCache,
		Logger:      logger,
	})
	registryService := service.NewRegistryService(departmentRepo, filerRepo, ticketRepo)
	notificationService := service.NewNotificationService(dispatcher, sender, logger, cfg.Mail)

	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Auth:     authMiddleware,
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Reports:  handlers.NewReportHandler(ticketService),
		Staff:    handlers.NewStaffHandler(staffService),
		Registry: handlers.NewRegistryHandler(registryService),
		Health:   handlers.NewHealthHandler(pool, rdb.Client),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
