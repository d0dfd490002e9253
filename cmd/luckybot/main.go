// Package main is the entry point for the lucky draw bot.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lucky-draw/internal/bot"
	"lucky-draw/internal/config"
	"lucky-draw/internal/metrics"
	"lucky-draw/internal/pkg/clock"
	"lucky-draw/internal/pkg/db"
	"lucky-draw/internal/quota"
	"lucky-draw/internal/repository"
	"lucky-draw/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	loc, err := cfg.Lucky.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve timezone")
	}

	log.Info().
		Int64("draw_scale", cfg.Lucky.DrawScale).
		Str("quota_backend", cfg.Lucky.QuotaBackend).
		Str("timezone", loc.String()).
		Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	tracker, closeTracker, err := newTracker(ctx, cfg, dbPool, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize quota tracker")
	}
	defer closeTracker()

	// Repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	tierRepo := repository.NewTierRepository(dbPool.Pool)
	prizeRepo := repository.NewPrizeRepository(dbPool.Pool)
	addressRepo := repository.NewAddressRepository(dbPool.Pool)

	// Services
	var m *metrics.LuckyMetrics
	if cfg.Metrics.Enabled {
		m = metrics.Lucky()
	}
	clk := clock.Real{}

	accountService := service.NewAccountService(userRepo)
	drawService := service.NewDrawService(tierRepo, prizeRepo, tracker, clk, service.DefaultRandom{}, cfg.Lucky.DrawScale, m)
	prizeTableService := service.NewPrizeTableService(tierRepo, clk, cfg.Lucky.DrawScale)
	recordService := service.NewRecordService(prizeRepo, userRepo, clk, cfg.Lucky.GracePeriod, cfg.Lucky.PageSize)
	fulfillmentService := service.NewFulfillmentService(prizeRepo, addressRepo, clk, cfg.Lucky.GracePeriod, loc, m)

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:             cfg,
		AccountService:     accountService,
		DrawService:        drawService,
		PrizeTableService:  prizeTableService,
		RecordService:      recordService,
		FulfillmentService: fulfillmentService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	var srv *http.Server
	if cfg.Metrics.Enabled {
		srv = newMetricsServer(cfg.Metrics.Listen, dbPool)
		go func() {
			log.Info().Str("listen", cfg.Metrics.Listen).Msg("Metrics server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}
	log.Info().Msg("Bot stopped gracefully")
}

// newTracker builds the configured quota backend. The returned func
// releases its resources.
func newTracker(ctx context.Context, cfg *config.Config, pool *db.Pool, loc *time.Location) (quota.Tracker, func(), error) {
	switch cfg.Lucky.QuotaBackend {
	case config.QuotaBackendMemory:
		log.Warn().Msg("Using in-memory quota tracker; quotas are exact only with a single bot instance")
		return quota.NewMemoryTracker(loc), func() {}, nil

	case config.QuotaBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		return quota.NewRedisTracker(client, cfg.Redis.KeyPrefix, loc), func() { _ = client.Close() }, nil
	}
	return quota.NewPostgresTracker(pool.Pool, loc), func() {}, nil
}

func newMetricsServer(addr string, pool *db.Pool) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.HealthCheck(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
