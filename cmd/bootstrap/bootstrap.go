package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"massage-booking/config"
	deliveryHttp "massage-booking/internal/delivery/http"
	"massage-booking/internal/delivery/http/handler"
	"massage-booking/internal/delivery/http/middleware"
	"massage-booking/internal/infrastructure/cache"
	"massage-booking/internal/infrastructure/database"
	"massage-booking/internal/infrastructure/messaging"
	"massage-booking/internal/repository"
	"massage-booking/internal/service"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/jwt"
	"massage-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	AuthUsecase usecase.AuthUsecase

	notifier  *service.ChangeNotifier
	resyncJob *service.OccupancyResyncJob
	publisher *messaging.RabbitPublisher
	log       *logrus.Logger
}

// New creates a new App instance with all dependencies initialized.
// Nothing is started until Run.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")

	app := &App{Config: cfg, log: log}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	var events service.EventPublisher = service.NoopEventPublisher{}
	if cfg.AMQP.URL != "" {
		publisher, err := messaging.NewRabbitPublisher(cfg.AMQP)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		app.publisher = publisher
		events = publisher
	} else {
		log.Info("AMQP_URL not set, integration events disabled")
	}

	stripe.Key = cfg.Stripe.SecretKey

	if err := app.initialize(events); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initialize wires every layer and creates the HTTP server
func (app *App) initialize(events service.EventPublisher) error {
	cfg, db, log := app.Config, app.DB, app.log
	loc := cfg.App.Location()

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	bookingRepo := repository.NewBookingRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := service.NewTokenStore(app.RedisClient)
	gate := service.NewAuthorizationGate(db, log, roleRepo)
	occupancyCache := service.NewOccupancyCache(db, app.RedisClient, bookingRepo, log, cfg.Cache.OccupancyTTL, loc)
	app.notifier = service.NewChangeNotifier(app.RedisClient, cfg.Notifier.Channel, log)
	bookingEvents := service.NewBookingEventService(events, log)

	resyncJob, err := service.NewOccupancyResyncJob(occupancyCache, cfg.Cache.ResyncSpec, log)
	if err != nil {
		return err
	}
	app.resyncJob = resyncJob

	reservationValidator, err := usecase.NewReservationValidator(customValidator, loc)
	if err != nil {
		return fmt.Errorf("failed to register reservation rules: %w", err)
	}

	// Usecases
	app.AuthUsecase = usecase.NewAuthUsecase(db, log, userRepo, roleRepo, auditService, jwtService, tokenStore)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, bookingRepo, occupancyCache)
	bookingUsecase := usecase.NewBookingUsecase(db, log, bookingRepo, auditService, reservationValidator,
		availabilityUsecase, occupancyCache, app.notifier, bookingEvents, loc)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	checkoutUsecase := usecase.NewCheckoutUsecase(log, cfg.Stripe, session.New)

	// Handlers
	authHandler := handler.NewAuthHandler(app.AuthUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase)
	changeStreamHandler := handler.NewChangeStreamHandler(app.notifier, cfg.App.AllowedOrigins, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	checkoutHandler := handler.NewCheckoutHandler(checkoutUsecase, customValidator)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	principalMiddleware := middleware.NewPrincipalMiddleware(gate)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimit, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)

	router := deliveryHttp.NewRouter(authHandler, bookingHandler, availabilityHandler, changeStreamHandler,
		auditLogHandler, checkoutHandler, authMiddleware, principalMiddleware, rateLimitMiddleware, corsMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts background workers and the HTTP server, and blocks until SIGINT/SIGTERM
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.notifier.Start(ctx); err != nil {
		return fmt.Errorf("failed to start change notifier: %w", err)
	}
	go app.resyncJob.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		app.log.Infof("Server starting on port %s", app.Config.App.Port)
		app.log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		app.shutdown()
		return fmt.Errorf("failed to start server: %w", err)
	}

	app.shutdown()
	return nil
}

func (app *App) shutdown() {
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.log.Info("Server shutdown complete")
}

// Close stops workers and closes all connections. Safe on a partially built App.
func (app *App) Close() {
	if app.resyncJob != nil {
		app.resyncJob.Stop()
	}
	if app.notifier != nil {
		app.notifier.Stop()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.log.Warnf("Failed to close RabbitMQ connection: %+v", err)
		}
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
