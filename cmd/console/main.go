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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tablero/internal/api"
	"tablero/internal/audit"
	"tablero/internal/branchapi"
	"tablero/internal/config"
	"tablero/internal/console"
	"tablero/internal/metrics"
	"tablero/internal/notify"
	"tablero/internal/schedule"
	"tablero/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("TABLERO_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.API.BaseURL == "" {
		logger.Fatal().Msg("set api.base_url in config")
	}

	schedule.DefaultSlot = cfg.DefaultSlot()

	client := branchapi.NewClient(cfg.API.BaseURL, cfg.API.Token)
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}
	if cfg.API.RateLimit > 0 {
		client.SetRateLimit(cfg.API.RateLimit, cfg.API.RateBurst)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New()
	branches, err := client.ListBranches(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("initial branch load failed")
	}
	st.SetAll(branches)
	logger.Info().Int("branches", len(branches)).Msg("branch collection loaded")

	c := console.New(st, client, &logger)

	if cfg.Audit.Enabled {
		auditLog, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open audit log failed")
		}
		defer auditLog.Close()
		c.UseAudit(auditLog)
	}

	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ManagerChats) > 0 {
		notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ManagerChats, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram notifier unavailable")
		} else {
			c.UseNotifier(notifier)
		}
	}

	go refreshLoop(ctx, client, st, cfg.RefreshInterval(), &logger)

	if cfg.Monitoring.HealthCheckPort > 0 {
		go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, client, rdb, &logger)
	}
	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	rules := api.Rules{
		MinDuration:    cfg.MinDuration(),
		MaxSlotsPerDay: cfg.Reservations.MaxSlotsPerDay,
	}
	srv := api.NewServer(cfg.Server.Addr, cfg.Server.APIKey, c, st, rules, &logger)

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("console started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("console server error")
	}
}

// refreshLoop periodically re-syncs the held collection from upstream so
// out-of-band changes eventually show up in the console.
func refreshLoop(ctx context.Context, client *branchapi.Client, st *store.Store, interval time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			branches, err := client.ListBranches(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("branch refresh failed")
				continue
			}
			st.SetAll(branches)
			logger.Debug().Int("branches", len(branches)).Msg("branch collection refreshed")
		case <-ctx.Done():
			return
		}
	}
}

func startHealthServer(ctx context.Context, port int, client *branchapi.Client, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := client.HealthCheck(ctxPing); err != nil {
			http.Error(w, "upstream not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
