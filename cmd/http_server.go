package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/payment-service/internal"
	"github.com/frahmantamala/payment-service/internal/core/events"
	"github.com/frahmantamala/payment-service/internal/integration"
	"github.com/frahmantamala/payment-service/internal/payment"
	paymentdb "github.com/frahmantamala/payment-service/internal/payment/postgres"
	"github.com/frahmantamala/payment-service/internal/stripe"
	"github.com/frahmantamala/payment-service/internal/transport"
	"github.com/frahmantamala/payment-service/internal/transport/middleware"
	"github.com/frahmantamala/payment-service/internal/transport/rest"
	"github.com/frahmantamala/payment-service/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)

	gatewayClient := stripe.NewClient(stripe.Config{
		APIBaseURL:     cfg.Stripe.APIBaseURL,
		SecretKey:      cfg.Stripe.SecretKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		RequestTimeout: cfg.Stripe.RequestTimeout,
	}, appLogger)

	paymentRepo := paymentdb.NewPaymentRepository(gormDB)
	paymentService := payment.NewPaymentService(paymentRepo, gatewayClient, eventBus, appLogger)
	integrationService := integration.NewService(paymentRepo, eventBus, appLogger)

	baseHandler := transport.NewBaseHandler(appLogger)
	paymentHandler := payment.NewHandler(baseHandler, paymentService, cfg.Stripe.PublishableKey, appLogger)
	webhookHandler := payment.NewWebhookHandler(baseHandler, paymentService, cfg.Stripe.WebhookSecret, appLogger)
	integrationHandler := integration.NewHandler(baseHandler, integrationService, appLogger)

	integrationEvents := integration.NewEventHandler(appLogger)
	integrationEvents.RegisterEventHandlers(eventBus)

	router := chi.NewRouter()
	router.Use(middleware.LoggingMiddleware(appLogger))
	rest.RegisterAllRoutes(router, db.DB, paymentHandler, webhookHandler, integrationHandler, appLogger)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Router: router,
		Logger: appLogger,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
