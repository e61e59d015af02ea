package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/addressvalidation/internal"
	"github.com/dukerupert/addressvalidation/internal/cache"
	"github.com/dukerupert/addressvalidation/internal/client"
	"github.com/dukerupert/addressvalidation/internal/crypto"
	"github.com/dukerupert/addressvalidation/internal/events"
	"github.com/dukerupert/addressvalidation/internal/handler/api"
	"github.com/dukerupert/addressvalidation/internal/middleware"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/router"
	"github.com/dukerupert/addressvalidation/internal/routes"
	"github.com/dukerupert/addressvalidation/internal/telemetry"
	"github.com/dukerupert/addressvalidation/internal/worker"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

type pinger interface {
	Ping(ctx context.Context) error
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(cfg.Metrics.Namespace, reg)
	httpMetrics := middleware.NewHTTPMetrics(cfg.Metrics.Namespace, reg)

	checks := map[string]api.CheckFunc{}

	var pool *pgxpool.Pool
	if cfg.Cache.Backend == cache.BackendPostgres {
		pool, err = openDatabase(ctx, cfg.DatabaseUrl, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	store, err := cache.Open(ctx, cache.Options{
		Backend:    cfg.Cache.Backend,
		MemorySize: cfg.Cache.Size,
		MaxTTL:     cfg.Cache.TTL,
		Redis: cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
		Pool: pool,
	})
	if err != nil {
		return fmt.Errorf("cache initialization failed: %w", err)
	}
	defer store.Close()

	if pg, ok := store.(*cache.PostgresStore); ok {
		purger := worker.NewWorker(pg.PurgeExpired, worker.Config{
			Name:     "cache_purge",
			Interval: purgeInterval,
		}, logger)
		go purger.Start(ctx)
	}
	if cfg.Cache.EncryptionKey != "" {
		store, err = encryptStore(store, cfg.Cache.EncryptionKey)
		if err != nil {
			return err
		}
	}
	if p, ok := store.(pinger); ok {
		checks["cache"] = p.Ping
	}
	logger.Info("Cache ready", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL, "encrypted", cfg.Cache.EncryptionKey != "")

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:     cfg.NATS.URL,
			Subject: cfg.NATS.Subject,
		})
		if err != nil {
			return fmt.Errorf("events initialization failed: %w", err)
		}
		defer natsPublisher.Close()
		checks["nats"] = natsPublisher.Ping
		publisher = natsPublisher
		logger.Info("Publishing validation events", "subject", natsPublisher.Subject())
	}

	defaults := request.Options{}
	if cfg.Google.EnableUSPSCASS {
		defaults.EnableUSPSCASS = request.Bool(true)
	}
	if cfg.Google.ReturnEnglishLatinAddress {
		defaults.LanguageOptions = &request.LanguageOptions{ReturnEnglishLatinAddress: true}
	}

	validator, err := client.New(client.Config{
		APIKey:    cfg.Google.APIKey,
		Endpoint:  cfg.Google.Endpoint,
		Timeout:   cfg.Google.Timeout,
		Defaults:  defaults,
		Cache:     store,
		CacheTTL:  cfg.Cache.TTL,
		Metrics:   metrics,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("client initialization failed: %w", err)
	}

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
		httpMetrics.Middleware,
	)

	apiDeps := routes.APIDeps{
		Handler:    api.NewHandler(validator, logger),
		AdminToken: cfg.Server.AdminToken,
	}
	routes.RegisterAPIRoutes(r, apiDeps)
	if cfg.Server.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, DELETE /api/cache is disabled")
	}
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Checks:  checks,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.CORS(cfg.Server.CORSOrigins())(r),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Google.Timeout + 10*time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "routes", r.Routes())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// openDatabase runs migrations over database/sql, then opens the pgx pool
// the cache uses.
func openDatabase(ctx context.Context, url string, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB, logger); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

func encryptStore(store cache.Store, encodedKey string) (cache.Store, error) {
	key, err := crypto.DecodeKeyBase64(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("cache encryption key: %w", err)
	}
	enc, err := crypto.NewAESEncryptor(key)
	if err != nil {
		return nil, fmt.Errorf("cache encryption key: %w", err)
	}
	return cache.NewEncryptedStore(store, enc), nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
