package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/olatide/bookingscheduler/backend/internal/adapters/database"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/events"
	"github.com/olatide/bookingscheduler/backend/internal/adapters/providers/calendar"
	"github.com/olatide/bookingscheduler/backend/internal/application/dispatch"
	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/redis"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/observability"
	"github.com/olatide/bookingscheduler/backend/pkg/config"
	"github.com/olatide/bookingscheduler/backend/pkg/retry"
	"github.com/olatide/bookingscheduler/backend/pkg/secrets"
)

func main() {
	_ = godotenv.Load()

	if result, err := secrets.Hydrate(context.Background(), secrets.FromEnv()); err != nil {
		log.Warn().Err(err).Msg("Failed to apply Vault secrets")
	} else if result.Enabled {
		log.Info().Int("loaded", result.Loaded).Str("path", result.Path).Msg("Vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-syncworker", cfg.Env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName+"-syncworker").
		Str("version", cfg.OTEL.ServiceVersion).
		Msg("Starting sync worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName+"-syncworker",
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
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	professionalAdapter := database.NewProfessionalAdapter(pgClient)
	serviceAdapter := database.NewServiceAdapter(pgClient)
	tenantAdapter := database.NewTenantAdapter(pgClient)

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

	syncService := services.NewCalendarSyncService(
		appointmentAdapter,
		professionalAdapter,
		tenantAdapter,
		serviceAdapter,
		calendarProvider,
		tokenSource,
		metrics,
	)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Sync.MaxAttempts

	worker := dispatch.NewWorker(events.NewRedisSyncQueue(redisClient), syncService, retryCfg)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Sync worker failed")
	}

	log.Info().Msg("Sync worker stopped")
}
