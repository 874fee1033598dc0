// Package server wires configuration, storage, media, services and the HTTP
// API together and runs them until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/httpapi"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/ratelimit"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

const startupTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	http   *httpapi.Server
}

// ParseLogLevel maps a config level name to a slog level; unknown names
// mean info.
func ParseLogLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, ParseLogLevel(c.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	limiter, err := app.newRateLimiter(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	clock := clockwork.NewRealClock()
	resolver := media.NewS3Resolver(c, clock)

	tokens := services.NewTokenService(db, rm, c, clock)
	us := services.NewUserService(db, rm, tokens, resolver)
	ss := services.NewSubscriptionService(db, rm)
	ps := services.NewProfileService(db, rm)

	reg := metrics.NewRegistry()

	app.http = httpapi.NewServer(c, logger, httpapi.Deps{
		Users:          us,
		Subscriptions:  ss,
		Profiles:       ps,
		Tokens:         tokens,
		Limiter:        limiter,
		Metrics:        metrics.NewHTTPMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
		DB:             db,
	})

	return app, nil
}

// newRateLimiter uses Redis when configured so that all replicas share one
// budget, and an in-process store otherwise.
func (app *App) newRateLimiter(ctx context.Context) (middleware.RateLimiterStore, error) {
	c := app.config
	if c.RedisAddr == "" {
		return ratelimit.NewMemoryStore(c.RateLimitPerSecond, c.RateLimitBurst), nil
	}

	opts := &redis.Options{Addr: c.RedisAddr}
	if strings.Contains(c.RedisAddr, "://") {
		var err error
		if opts, err = redis.ParseURL(c.RedisAddr); err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	app.redis = rdb

	return ratelimit.NewRedisStore(rdb, app.logger.With("module", "ratelimit"), c.RateLimitPerSecond, c.RateLimitBurst), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}
