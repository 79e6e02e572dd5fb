package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/techaway/backend/internal/api/http"
	"github.com/techaway/backend/internal/api/http/handlers"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/config"
	"github.com/techaway/backend/internal/events"
	"github.com/techaway/backend/internal/invoice"
	"github.com/techaway/backend/internal/mail"
	"github.com/techaway/backend/internal/observability"
	"github.com/techaway/backend/internal/payment"
	"github.com/techaway/backend/internal/persistence"
	"github.com/techaway/backend/internal/repository"
	"github.com/techaway/backend/internal/service"
	"github.com/techaway/backend/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	refreshRepo := repository.NewRefreshTokenRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	txManager := persistence.NewTxManager(pool)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, auth.TokenTTLs{
		Access:  time.Duration(cfg.Auth.AccessTokenTTLMinutes) * time.Minute,
		Refresh: time.Duration(cfg.Auth.RefreshTokenTTLDays) * 24 * time.Hour,
		Confirm: time.Duration(cfg.Auth.ConfirmTokenTTLMinutes) * time.Minute,
		Reset:   time.Duration(cfg.Auth.ResetTokenTTLMinutes) * time.Minute,
	})
	authenticator := auth.NewAuthenticator(userRepo, tokenManager)
	authMiddleware := auth.NewAuthMiddleware(authenticator)

	mailer := mail.NewSMTPMailer(cfg.Mail)
	invoices := invoice.NewPDFGenerator("")
	payments := payment.NewStripeProvider(cfg.Stripe)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	service.NewNotificationService(logger).Register(dispatcher)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:         userRepo,
		RefreshTokenRepo: refreshRepo,
		TxManager:        txManager,
		TokenManager:     tokenManager,
		Credentials:      authenticator,
		Mailer:           mailer,
		Dispatcher:       dispatcher,
		Logger:           logger,
		BcryptCost:       cfg.Auth.BcryptCost,
		BaseURL:          cfg.App.BaseURL,
	})
	checkoutService := service.NewCheckoutService(service.CheckoutDependencies{
		TicketRepo:  ticketRepo,
		OrderRepo:   orderRepo,
		ServiceRepo: serviceRepo,
		SLARepo:     slaRepo,
		UserRepo:    userRepo,
		TxManager:   txManager,
		Payments:    payments,
		Mailer:      mailer,
		Invoices:    invoices,
		ReplayCache: redis,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	orderService := service.NewOrderService(service.OrderServiceDependencies{
		OrderRepo:  orderRepo,
		TicketRepo: ticketRepo,
		TxManager:  txManager,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketServiceDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ServiceRepo: serviceRepo,
		SLARepo:     slaRepo,
		Logger:      logger,
	})
	userService := service.NewUserService(userRepo, logger)
	reportService := service.NewReportService(reportRepo, logger)

	purger := worker.NewTokenPurger(refreshRepo, logger, time.Hour)
	purger.Start(ctx)
	defer purger.Stop()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Checkout:       handlers.NewCheckoutHandler(checkoutService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Users:          handlers.NewUsersHandler(userService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
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
