package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/olatide/bookingscheduler/backend/internal/adapters/database"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/events"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/providers/billing"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/providers/calendar"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/providers/identity"
	"github.com/olatide/bookingscheduler/backend/internal/api/handlers"
	"github.com/olatide/bookingscheduler/backend/internal/api/routes"
	"github.com/olatide/bookingscheduler/backend/internal/application/dispatch"
	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/redis"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	"github.com/olatide/bookingscheduler/backend/pkg/config"
	"github.com/olatide/bookingscheduler/backend/pkg/retry"
	"github.com/olatide/bookingscheduler/backend/pkg/secrets"
)

func main() {
	// Local development convenience; ignored when no .env file exists
	_ = godotenv.Load()

	// Hydrate environment from Vault before reading configuration
	if result, err := secrets.Hydrate(context.Background(), secrets.FromEnv()); err != nil {
		log.Warn().Err(err).Msg("Failed to apply Vault secrets")
	} else if result.Enabled {
		log.Info().Int("loaded", result.Loaded).Str("path", result.Path).Msg("Vault secrets applied")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Env).
		Msg("Starting API server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis client initialized successfully")

	// Initialize adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	professionalAdapter := database.NewProfessionalAdapter(pgClient)
	serviceAdapter := database.NewServiceAdapter(pgClient)
	tenantAdapter := database.NewTenantAdapter(pgClient)
	webhookEventAdapter := database.NewWebhookEventAdapter(pgClient)
	identityResolver := identity.NewResolver(pgClient)

	// Initialize event bus
	eventBus := events.NewRedisEventBus(redisClient)

	// Initialize calendar provider
	calendarProvider, tokenSource := calendar.NewProvider(calendar.ProviderConfig{
		TokenURL:     cfg.Calendar.TokenURL,
		BaseURL:      cfg.Calendar.BaseURL,
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		Timeout:      cfg.Calendar.Timeout,
	})
	if cfg.Calendar.ClientID == "" {
		log.Warn().Msg("CALENDAR_CLIENT_ID is not set; using mock calendar provider")
	}

	// Initialize services
	availabilityService := services.NewAvailabilityService(professionalAdapter, serviceAdapter, appointmentAdapter, metrics)
	appointmentService := services.NewAppointmentService(appointmentAdapter, professionalAdapter, serviceAdapter, eventBus)
	syncService := services.NewCalendarSyncService(
		appointmentAdapter,
		professionalAdapter,
		tenantAdapter,
		serviceAdapter,
		calendarProvider,
		tokenSource,
		metrics,
	)
	billingService := services.NewBillingService(billing.NewRunner())

	// Start the sync dispatcher. In queue mode the dispatcher only enqueues;
	// the syncworker binary drains the queue.
	var syncQueue providers.SyncQueue
	if cfg.Sync.UseQueue {
		syncQueue = events.NewRedisSyncQueue(redisClient)
		log.Info().Msg("Sync dispatch using durable queue")
	}
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Sync.MaxAttempts

	dispatcher := dispatch.NewDispatcher(eventBus, syncQueue, syncService, retryCfg)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start sync dispatcher")
	}

	// Initialize handlers
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	professionalHandler := handlers.NewProfessionalHandler(professionalAdapter)
	changeHandler := handlers.NewChangeWebhookHandler(webhookEventAdapter, eventBus, cfg.Webhook.SigningSecret)
	billingHandler := handlers.NewBillingHandler(billingService)

	// Set up router
	router := routes.NewRouter(
		availabilityHandler,
		appointmentHandler,
		professionalHandler,
		changeHandler,
		billingHandler,
		identityResolver,
		metrics,
		cfg.Server.AllowedOrigins,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	dispatcher.Stop()

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
