// Package server wires configuration, storage, the password codec, the
// session manager and the HTTP surface into one runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/secrets/internal/logging"
	"github.com/dmitrijs2005/secrets/internal/server/codec"
	"github.com/dmitrijs2005/secrets/internal/server/config"
	"github.com/dmitrijs2005/secrets/internal/server/federated"
	"github.com/dmitrijs2005/secrets/internal/server/httpapi"
	"github.com/dmitrijs2005/secrets/internal/server/metrics"
	"github.com/dmitrijs2005/secrets/internal/server/repositories/repomanager"
	sessionrepo "github.com/dmitrijs2005/secrets/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/secrets/internal/server/services"
	"github.com/dmitrijs2005/secrets/internal/server/sessions"
	gsessions "github.com/gorilla/sessions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	accounts *services.AccountService
	server   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: c, logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if c.DatabaseDSN != "" {
		if app.db, err = sql.Open("pgx", c.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err = app.db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("db ping error: %w", err)
		}
	}

	var sessionStore sessionrepo.Repository
	switch c.SessionStore {
	case config.StoreRedis:
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err = app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		sessionStore = sessionrepo.NewRedisRepository(app.redis)
	case config.StoreMemory:
		sessionStore = sessionrepo.NewMemoryRepository()
	}

	var rm repomanager.RepositoryManager
	codecOpts := codec.Options{BcryptCost: c.BcryptCost, Key: c.EncryptionKey}
	if app.db != nil {
		rm = repomanager.NewPostgresRepositoryManager(sessionStore)
		if err = rm.RunMigrations(ctx, app.db); err != nil {
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		codecOpts.DB = app.db
	} else {
		logger.Warn(ctx, "no database configured, accounts are kept in memory")
		rm = repomanager.NewMemoryRepositoryManager(sessionStore)
	}

	cdc, err := codec.New(c.Codec, codecOpts)
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	met := metrics.New(reg)

	sm := sessions.NewManager(rm.Sessions(app.db), []byte(c.SessionSecret), c.SessionTTL, logger.With("module", "sessions"))
	app.accounts = services.NewAccountService(app.db, rm, cdc, sm, logger.With("module", "accounts"), met)

	opts := httpapi.Options{
		GenericLoginErrors: c.GenericLoginErrors,
		SessionMaxAge:      int(c.SessionTTL.Seconds()),
	}
	if c.GoogleEnabled() {
		opts.Google = federated.NewGoogleProvider(federated.GoogleConfig{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			CallbackURL:  c.GoogleCallbackURL,
		})
	}

	cookies := gsessions.NewCookieStore([]byte(c.SessionSecret))
	handler := httpapi.NewHandler(app.accounts, cookies, logger.With("module", "http"), opts)
	app.server = httpapi.NewServer(c.HTTPAddr, httpapi.NewRouter(handler, logger, reg), logger)

	logger.Info(ctx, "app initialized", "codec", cdc.Name(), "session_store", c.SessionStore, "google", c.GoogleEnabled())
	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			runErr = err
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		sessions.RunSweeper(ctx, app.accounts, app.config.SessionSweepInterval, app.logger.With("module", "sweeper"))
	}()

	wg.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return runErr
}

// Close releases the database and Redis connections.
func (app *App) Close() error {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}
