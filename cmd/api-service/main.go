package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/api/handler"
	"github.com/cuongbtq/recruitment-be/internal/api/router"
	"github.com/cuongbtq/recruitment-be/internal/config"
	"github.com/cuongbtq/recruitment-be/internal/notify"
	"github.com/cuongbtq/recruitment-be/internal/service"
	"github.com/cuongbtq/recruitment-be/internal/storage"
	"github.com/cuongbtq/recruitment-be/shared/ledger"
	"github.com/cuongbtq/recruitment-be/shared/logger"
	"github.com/cuongbtq/recruitment-be/shared/mailer"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/cuongbtq/recruitment-be/shared/postgresql"
	"github.com/cuongbtq/recruitment-be/shared/rabbitmq"
	"github.com/cuongbtq/recruitment-be/shared/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Initialize tracing
	shutdownTracer := func(context.Context) error { return nil }
	if cfg.Telemetry.Enabled {
		shutdownTracer, err = telemetry.InitTracer(startupCtx, cfg.App.Name, cfg.App.Version, cfg.Telemetry.CollectorURL)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		appLogger.Info("Tracing enabled", slog.String("collector", cfg.Telemetry.CollectorURL))
	}

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(startupCtx, &cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	store := storage.NewStorage(dbClient, cfg.Database.QueryTimeout)
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(startupCtx); err != nil {
			dbClient.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		appLogger.Info("Database schema is up to date")
	}

	// The task queue is optional for the API: without it failed work is logged, not deferred
	var publisher service.TaskPublisher
	rabbitClient, err := initRabbitMQ(startupCtx, &cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		appLogger.Warn("RabbitMQ unavailable, deferred tasks disabled",
			slog.Any("error", err),
		)
		rabbitClient = nil
	} else {
		publisher = rabbitClient
		appLogger.Info("RabbitMQ connection established")
	}

	webhookLedger, redisLedger := initLedger(startupCtx, cfg, appLogger.Logger)

	mail := mailer.New(&mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
	}, appLogger.Logger)
	if !mail.Enabled() {
		appLogger.Warn("SMTP credentials missing, submission emails disabled")
	}

	notifier := notify.New(mail, notify.Config{
		RecruitEmail: cfg.SMTP.RecruitEmail,
		CompanyName:  cfg.SMTP.CompanyName,
		SendTimeout:  cfg.SMTP.SendTimeout,
	}, appLogger.Logger)

	paystackClient := paystack.NewClient(&paystack.Config{
		BaseURL:   cfg.Paystack.BaseURL,
		SecretKey: cfg.Paystack.SecretKey,
		Timeout:   cfg.Paystack.Timeout,
	}, appLogger.Logger)

	if cfg.Admin.Token == "" {
		appLogger.Warn("ADMIN_TOKEN is empty, admin endpoints are not protected")
	}

	// Initialize router
	handlerDeps := &handler.Dependencies{
		Logger: appLogger.Logger,
		DB:     dbClient,
		Applications: service.NewApplicationService(service.ApplicationServiceConfig{
			Store:             store,
			Notifier:          notifier,
			Publisher:         publisher,
			RankByActiveBoost: cfg.Listing.RankByActiveBoost,
			Logger:            appLogger.Logger,
		}),
		Checkout: service.NewCheckoutService(service.CheckoutServiceConfig{
			Provider:    paystackClient,
			Currency:    cfg.Paystack.Currency,
			CallbackURL: cfg.Paystack.CallbackURL,
			StrictTiers: cfg.Checkout.StrictTiers,
			Logger:      appLogger.Logger,
		}),
		Webhook: service.NewWebhookService(service.WebhookServiceConfig{
			Secret:    cfg.Paystack.SecretKey,
			Store:     store,
			Ledger:    webhookLedger,
			Publisher: publisher,
			Logger:    appLogger.Logger,
		}),
		AdminToken:     cfg.Admin.Token,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StrictTiers:    cfg.Checkout.StrictTiers,
		Listing: handler.ListingLimits{
			DefaultLimit: cfg.Listing.DefaultLimit,
			MaxLimit:     cfg.Listing.MaxLimit,
		},
	}

	r, err := initRouter(cfg.App.Environment, handlerDeps)
	if err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case runErr = <-serverErr:
		appLogger.Error("Server failed", slog.Any("error", runErr))
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)

	// Cleanup function to close all resources
	cleanup := func() {
		cancel()
		if err := shutdownTracer(context.Background()); err != nil {
			appLogger.Warn("Failed to flush traces", slog.Any("error", err))
		}
		if redisLedger != nil {
			redisLedger.Close()
		}
		if rabbitClient != nil {
			rabbitClient.Close()
		}
		dbClient.Close()
	}
	defer cleanup()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return runErr
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.Config) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      cfg.App.Name,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnectTimeout:  cfg.ConnectTimeout,
	}

	return postgresql.Connect(ctx, dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(ctx context.Context, cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		DeadLetterQueue:    cfg.Queue.DeadLetter,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.Dial(ctx, rabbitConfig, logger)
}

// initLedger connects the processed-reference ledger. Without Redis the
// webhook still works, relying on overwrite semantics for redeliveries.
func initLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ledger.Ledger, *ledger.Redis) {
	if !cfg.Ledger.Enabled {
		return ledger.Nop{}, nil
	}

	redisLedger, err := ledger.NewRedis(ctx, ledger.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Ledger.Prefix,
		TTL:      cfg.Ledger.TTL,
	})
	if err != nil {
		logger.Warn("Redis unavailable, webhook deduplication disabled",
			slog.String("addr", cfg.Redis.Addr),
			slog.Any("error", err),
		)
		return ledger.Nop{}, nil
	}

	logger.Info("Webhook reference ledger connected", slog.String("addr", cfg.Redis.Addr))
	return redisLedger, redisLedger
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) (*gin.Engine, error) {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
