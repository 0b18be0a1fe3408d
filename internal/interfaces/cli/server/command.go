package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	bookingUC "github.com/turnex-app/turnex/internal/application/booking/usecases"
	paymentUC "github.com/turnex-app/turnex/internal/application/payment/usecases"
	subscriptionUC "github.com/turnex-app/turnex/internal/application/subscription/usecases"
	"github.com/turnex-app/turnex/internal/domain/shared/events"
	"github.com/turnex-app/turnex/internal/infrastructure/cache"
	"github.com/turnex-app/turnex/internal/infrastructure/config"
	"github.com/turnex-app/turnex/internal/infrastructure/database"
	"github.com/turnex-app/turnex/internal/infrastructure/mercadopago"
	"github.com/turnex-app/turnex/internal/infrastructure/migration"
	"github.com/turnex-app/turnex/internal/infrastructure/notification"
	"github.com/turnex-app/turnex/internal/infrastructure/persistence/seeds"
	"github.com/turnex-app/turnex/internal/infrastructure/pubsub"
	"github.com/turnex-app/turnex/internal/infrastructure/repository"
	"github.com/turnex-app/turnex/internal/infrastructure/scheduler"
	"github.com/turnex-app/turnex/internal/infrastructure/vault"
	"github.com/turnex-app/turnex/internal/interfaces/http/handlers"
	"github.com/turnex-app/turnex/internal/interfaces/http/routes"
	"github.com/turnex-app/turnex/internal/shared/biztime"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	seedPlans   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the Turnex billing server with scheduler jobs and webhook endpoints.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&seedPlans, "seed-plans", false, "Seed the plan catalog on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting server",
		"environment", env,
		"auto_migrate", autoMigrate)

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			logger.Warn("auto-migration is enabled in production environment - this is not recommended!")
		}
		migrationManager := migration.NewManager(env)
		if err := migrationManager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
			logger.Fatal("auto-migration failed", "error", err)
		}
		logger.Info("auto-migration completed successfully")
	}

	if seedPlans {
		if err := seeds.SeedPlans(database.Get()); err != nil {
			logger.Fatal("plan seeding failed", "error", err)
		}
		logger.Info("plan catalog seeded")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	log := logger.NewLogger()

	dispatcher := events.NewInMemoryEventDispatcher(100, log)
	if err := dispatcher.Start(); err != nil {
		logger.Fatal("failed to start event dispatcher", "error", err)
	}
	defer func() {
		if err := dispatcher.Stop(); err != nil {
			logger.Error("failed to stop event dispatcher", "error", err)
		}
	}()
	logger.Info("event dispatcher started")

	billingBus := pubsub.NewRedisBillingEventBus(redisClient, log)
	relay := notification.NewBillingEventRelay(billingBus, log)
	if err := relay.Register(dispatcher); err != nil {
		logger.Fatal("failed to register billing event relay", "error", err)
	}

	db := database.Get()
	subscriptionRepo := repository.NewSubscriptionRepository(db, log)
	planRepo := repository.NewPlanRepository(db, log)
	paymentRepo := repository.NewPaymentRepository(db, log)
	bookingRepo := repository.NewBookingRepository(db, log)
	credentialRepo := repository.NewCredentialRepository(db, log)
	handshakeRepo := repository.NewHandshakeRepository(db, log)
	stampRepo := repository.NewTrialWarningStampRepository(db, log)
	usageReader := repository.NewUsageReader(db, log)
	planLimitCache := cache.NewRedisPlanLimitCache(redisClient, log)

	cipher, err := vault.NewCipher(cfg.Payment.VaultKey)
	if err != nil {
		logger.Fatal("failed to initialize vault cipher", "error", err)
	}
	mpClient := mercadopago.NewClient(mercadopago.Config{
		AppID:       cfg.Payment.AppID,
		AppSecret:   cfg.Payment.AppSecret,
		RedirectURL: cfg.Payment.RedirectURL,
	})
	credentialVault := vault.NewCredentialVault(credentialRepo, handshakeRepo, mpClient, cipher, log)

	resolver := subscriptionUC.NewSubscriptionResolver(
		subscriptionRepo, planRepo, dispatcher, cfg.Subscription.FreePlanSlug, log)

	createSubscriptionUC := subscriptionUC.NewCreateSubscriptionUseCase(subscriptionRepo, planRepo, log)
	createTrialUC := subscriptionUC.NewCreateTrialSubscriptionUseCase(subscriptionRepo, planRepo, dispatcher, log)
	getSubscriptionUC := subscriptionUC.NewGetSubscriptionUseCase(
		resolver, planRepo, stampRepo, dispatcher, cfg.Subscription.TrialWarningDays, log)
	cancelUC := subscriptionUC.NewCancelSubscriptionUseCase(resolver, subscriptionRepo, dispatcher, log)
	changePlanUC := subscriptionUC.NewChangePlanUseCase(
		resolver, subscriptionRepo, planRepo, planLimitCache, dispatcher, log)
	checkLimitUC := subscriptionUC.NewCheckLimitUseCase(resolver, planRepo, planLimitCache, usageReader, log)
	listPlansUC := subscriptionUC.NewListPlansUseCase(planRepo)
	expireSubscriptionsUC := subscriptionUC.NewExpireSubscriptionsUseCase(subscriptionRepo, dispatcher, log)

	activateUC := paymentUC.NewActivateSubscriptionUseCase(subscriptionRepo, planRepo, dispatcher, log)
	createIntentUC := paymentUC.NewCreatePaymentIntentUseCase(
		paymentRepo, planRepo, credentialVault, mpClient,
		paymentUC.CheckoutURLs{
			NotificationURL: cfg.Payment.WebhookURL,
			SuccessURL:      cfg.Payment.CheckoutBack + "/success",
			FailureURL:      cfg.Payment.CheckoutBack + "/failure",
			PendingURL:      cfg.Payment.CheckoutBack + "/pending",
		},
		log)
	webhookUC := paymentUC.NewHandleWebhookUseCase(paymentRepo, credentialVault, mpClient, activateUC, log)
	expirePaymentsUC := paymentUC.NewExpirePaymentsUseCase(paymentRepo, dispatcher, 48*time.Hour, log)

	expireDepositsUC := bookingUC.NewExpireDepositsUseCase(bookingRepo, dispatcher, log)

	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		logger.Fatal("failed to create scheduler", "error", err)
	}
	if err := schedulerManager.RegisterBillingJobs(expirePaymentsUC); err != nil {
		logger.Fatal("failed to register billing jobs", "error", err)
	}
	if err := schedulerManager.RegisterDepositSweep(expireDepositsUC, cfg.Booking.SweepIntervalMinute); err != nil {
		logger.Fatal("failed to register deposit sweep", "error", err)
	}
	if err := schedulerManager.RegisterSubscriptionJobs(expireSubscriptionsUC); err != nil {
		logger.Fatal("failed to register subscription jobs", "error", err)
	}
	schedulerManager.Start()
	defer func() {
		if err := schedulerManager.Stop(); err != nil {
			logger.Error("failed to stop scheduler", "error", err)
		}
	}()
	logger.Info("scheduler started", "jobs", len(schedulerManager.Jobs()))

	subscriptionHandler := handlers.NewSubscriptionHandler(
		createSubscriptionUC, createTrialUC, getSubscriptionUC, cancelUC, changePlanUC, checkLimitUC, listPlansUC)
	billingHandler := handlers.NewBillingHandler(createIntentUC, webhookUC)
	gatewayHandler := handlers.NewGatewayHandler(credentialVault)

	router := routes.Setup(&cfg.Server, subscriptionHandler, billingHandler, gatewayHandler, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}
