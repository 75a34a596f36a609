package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/crljhnmngs/portfolio-admin/internal/config"
	hhttp "github.com/crljhnmngs/portfolio-admin/internal/handler/http"
	hauth "github.com/crljhnmngs/portfolio-admin/internal/handler/http/auth"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
	pgRepo "github.com/crljhnmngs/portfolio-admin/internal/infra/adapter/persistence/postgres"
	"github.com/crljhnmngs/portfolio-admin/internal/infra/db"
	"github.com/crljhnmngs/portfolio-admin/internal/infra/worker"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/metrics"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/tracing"
	"github.com/crljhnmngs/portfolio-admin/internal/resilience/circuitbreaker"
	"github.com/crljhnmngs/portfolio-admin/internal/resilience/retry"
	authservice "github.com/crljhnmngs/portfolio-admin/internal/service/auth"
	projUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/project"
	skillUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/skill"
	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

// poolStatsInterval is how often connection pool gauges are refreshed.
const poolStatsInterval = 15 * time.Second

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	policies, err := config.LoadPolicies(cfg.RateLimit.PolicyFile)
	if err != nil {
		return fmt.Errorf("load rate limit policies: %w", err)
	}
	logSecurityPosture(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(tracing.LoadConfig(cfg.Version))
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	database, err := openDatabase(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(ctx, database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database, metrics.ObserveBreaker)
	conn := pgRepo.Instrument(dbBreaker)

	sessions := authservice.NewSessionService(
		pgRepo.NewUserRepo(conn),
		pgRepo.NewSessionRepo(conn),
		authservice.WithTTL(cfg.Session.TTL),
	)

	rl, err := newRateLimiting(ctx, cfg.RateLimit, logger)
	if err != nil {
		return err
	}
	defer rl.close()

	ipExtractor, err := middleware.NewIPExtractorFromEnv()
	if err != nil {
		return fmt.Errorf("load trusted proxies: %w", err)
	}

	breakers := map[string]hhttp.BreakerState{"database": dbBreaker}
	if rl.breaker != nil {
		breakers["redis"] = rl.breaker
	}

	validator := hauth.NewSessionValidator(sessions, hauth.CookieConfig{Secure: cfg.Session.CookieSecure}, logger)
	router := newRouter(routerDeps{
		Logger:   logger,
		Limiter:  rl.limiter,
		Policies: policies,
		IP:       ipExtractor,
		Gate:     hauth.NewAPIKeyGate(middleware.NewAllowList(cfg.AllowedOrigins), cfg.APISecretKey, logger),
		Sessions: validator,
		Auth:     hauth.NewHandlers(sessions, validator, logger),
		Skills:   &skillUC.Service{Repo: pgRepo.NewSkillRepo(conn)},
		Projects: &projUC.Service{Repo: pgRepo.NewProjectRepo(conn), LanguageRepo: pgRepo.NewLanguageRepo(conn)},
		Health: &hhttp.HealthHandler{
			DB:        database,
			Version:   cfg.Version,
			RateLimit: rl.store,
			Breakers:  breakers,
		},
		Ready: &hhttp.ReadyHandler{DB: database},
	})

	scheduler := worker.NewScheduler(logger)
	if err := scheduler.Add("session-purge", cfg.Session.PurgeSchedule, worker.NewPurgeJob(sessions, logger, 0)); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           applyMiddleware(logger, router),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serve(gctx, srv, logger, cfg.Version, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		hhttp.StartRateLimitCleanup(gctx, rl.limiter, cfg.RateLimit.SweepInterval)
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		reportPoolStats(gctx, database, poolStatsInterval)
		return nil
	})
	return g.Wait()
}

// openDatabase retries the initial connection so the API can start
// alongside its database.
func openDatabase(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	var database *sql.DB
	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		d, err := db.Open(ctx, dsn, db.ConnectionConfigFromEnv())
		if errors.Is(err, db.ErrMissingDSN) {
			return retry.Permanent(err)
		}
		if err != nil {
			logger.Warn("database not reachable yet", slog.Any("error", err))
			return err
		}
		database = d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

// rateLimiting bundles the limiter with the store parts /health reports on.
type rateLimiting struct {
	limiter *ratelimit.Limiter
	store   ratelimit.Store
	breaker *circuitbreaker.CircuitBreaker
	close   func()
}

func newRateLimiting(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) (*rateLimiting, error) {
	rlMetrics := ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	memory := ratelimit.NewMemoryStore(ratelimit.MemoryStoreConfig{MaxKeys: cfg.MaxKeys, Metrics: rlMetrics})

	if cfg.Store != config.StoreRedis {
		logger.Info("rate limiting uses the in-process store",
			slog.Int("max_keys", cfg.MaxKeys))
		return &rateLimiting{
			limiter: ratelimit.NewLimiter(memory, ratelimit.WithMetrics(rlMetrics)),
			store:   memory,
			close:   func() {},
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	redisStore := ratelimit.NewRedisStore(client, ratelimit.RedisStoreConfig{})

	// A Redis outage at startup is not fatal: the fallback store admits per
	// instance until the breaker closes again.
	if err := retry.WithBackoff(ctx, retry.RedisConfig(), func() error {
		return redisStore.Ping(ctx)
	}); err != nil {
		logger.Warn("redis not reachable, starting on local fallback",
			slog.String("addr", cfg.RedisAddr),
			slog.Any("error", err))
	}

	breaker := circuitbreaker.New(circuitbreaker.RedisConfig(), metrics.ObserveBreaker)
	store := ratelimit.NewFallbackStore("redis", redisStore, memory, breaker, rlMetrics)
	logger.Info("rate limiting uses redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB))

	return &rateLimiting{
		limiter: ratelimit.NewLimiter(store, ratelimit.WithMetrics(rlMetrics)),
		store:   store,
		breaker: breaker,
		close: func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", slog.Any("error", err))
			}
		},
	}, nil
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, version string, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func reportPoolStats(ctx context.Context, database *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		metrics.UpdateDBConnectionStats(database.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// logSecurityPosture warns about settings that lock callers out or weaken
// the session cookie.
func logSecurityPosture(logger *slog.Logger, cfg *config.AppConfig) {
	if len(cfg.AllowedOrigins) == 0 {
		logger.Warn("ALLOWED_ORIGINS is empty, every cross-origin request will be refused")
	}
	if cfg.APISecretKey == "" {
		logger.Warn("API_SECRET_KEY is empty, no API key will be accepted")
	}
	if !cfg.Session.CookieSecure {
		logger.Warn("session cookies are not marked Secure")
	}
}
