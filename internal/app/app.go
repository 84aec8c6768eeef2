// Package app wires the store, the resource engine and the web layer
// together from a configuration.
package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/cli/config"
	"github.com/careboard/careboard/internal/database"
	"github.com/careboard/careboard/internal/metrics"
	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/orm/transaction"
	"github.com/careboard/careboard/internal/resource"
	"github.com/careboard/careboard/internal/seed"
	"github.com/careboard/careboard/internal/web/handlers"
	"github.com/careboard/careboard/internal/web/middleware"
	"github.com/careboard/careboard/internal/web/request"
	"github.com/careboard/careboard/internal/web/router"
	"github.com/careboard/careboard/internal/web/server"
	"github.com/careboard/careboard/internal/web/session"
	"github.com/careboard/careboard/internal/web/static"
	"github.com/careboard/careboard/internal/web/view"
)

// App holds the long-lived components of a running instance
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *database.DB
	Registry *schema.Registry
	Store    *crud.Store
	Tx       *transaction.Manager
	Engine   *resource.Engine
	Metrics  *metrics.Metrics
	Sessions session.Store
	Router   *router.Router
}

// New opens the database and builds every component. The caller owns the
// returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.Open(ctx, database.Config{
		URL:          cfg.DatabaseURL(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Registry: models.NewRegistry(),
		Store:    crud.NewStore(db.Dialect),
		Tx:       transaction.NewManager(db.DB, transaction.WithLogger(logger.Named("tx"))),
		Metrics:  metrics.New(),
		Sessions: newSessionStore(cfg),
	}
	a.Engine = resource.NewEngine(a.Registry, a.Store, a.Tx,
		resource.WithObserver(a.Metrics),
		resource.WithLogger(logger.Named("resource")),
	)

	a.Router, err = buildRouter(cfg, a.Engine, db, a.Sessions, a.Metrics, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.Router
}

// Migrate applies pending schema migrations
func (a *App) Migrate(ctx context.Context) (int, error) {
	return a.DB.Migrate(ctx, a.Logger.Named("migrate"))
}

// Seed loads the built-in demo fixture into an empty database
func (a *App) Seed(ctx context.Context) (*seed.Result, error) {
	return seed.NewLoader(a.Registry, a.Store, a.Tx, a.Logger.Named("seed")).Load(ctx, seed.Default())
}

// Server builds the HTTP server for the configured address
func (a *App) Server() (*server.Server, error) {
	return server.New(&server.Config{
		Address:           a.Config.Address(),
		Handler:           a.Handler(),
		ReadTimeout:       a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	})
}

// RegisterHooks closes the session store and the database once the server
// has stopped.
func (a *App) RegisterHooks(gs *server.GracefulShutdown) {
	gs.RegisterHook("sessions", func(context.Context) error { return a.Sessions.Close() })
	gs.RegisterHook("database", func(context.Context) error { return a.DB.Close() })
}

// Close releases the session store and the database
func (a *App) Close() error {
	return errors.Join(a.Sessions.Close(), a.DB.Close())
}

// Routes lists the routes the application serves without opening a store
func Routes(cfg *config.Config) ([]router.RouteInfo, error) {
	engine := resource.NewEngine(models.NewRegistry(), nil, nil)
	sessions := session.NewMemoryStore(0)
	defer sessions.Close()

	r, err := buildRouter(cfg, engine, nil, sessions, metrics.New(), zap.NewNop())
	if err != nil {
		return nil, err
	}
	return r.Routes(), nil
}

func newSessionStore(cfg *config.Config) session.Store {
	if cfg.Session.Store == "redis" {
		return session.NewRedisStore(session.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: SessionKeyPrefix(cfg.SecretKey),
		})
	}
	return session.NewMemoryStore(time.Minute)
}

// SessionKeyPrefix namespaces Redis session keys by secret, so instances
// with different secrets never read each other's sessions
func SessionKeyPrefix(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return session.DefaultKeyPrefix + hex.EncodeToString(sum[:4]) + ":"
}

func buildRouter(cfg *config.Config, engine *resource.Engine, db handlers.Pinger, sessions session.Store, m *metrics.Metrics, logger *zap.Logger) (*router.Router, error) {
	r := router.NewRouter()

	operational := middleware.PathSet{
		Exact:    []string{"/healthz"},
		Prefixes: []string{"/static/"},
	}
	if cfg.Metrics.Enabled {
		operational.Exact = append(operational.Exact, cfg.Metrics.Path)
	}

	sessionConfig := session.DefaultConfig(sessions)
	sessionConfig.CookieName = cfg.Session.CookieName
	sessionConfig.MaxAge = cfg.Session.MaxAge
	sessionConfig.Secure = cfg.Session.Secure

	stack := middleware.NewChain(
		middleware.RequestID(),
		middleware.AccessLog(middleware.AccessLogConfig{
			Sink: middleware.ZapLogger(logger.Named("http")),
			Skip: middleware.PathSet{Exact: []string{"/healthz"}},
		}),
		middleware.Metrics(m),
		middleware.Recovery(logger),
	).Use(middleware.Except(operational, session.Middleware(sessionConfig, logger.Named("session"))))
	r.Use(stack.Then)

	views, err := view.New(r, engine.Registry().All())
	if err != nil {
		return nil, err
	}

	h := handlers.New(handlers.Config{
		Engine: engine,
		Views:  views,
		URLs:   r,
		Parser: request.NewParser(),
		DB:     db,
		Logger: logger.Named("handlers"),
	})
	if err := h.Register(r); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	r.Mount("/static", static.NewFileServer("/static"))
	if cfg.Metrics.Enabled {
		if _, err := r.Named(r.Get(cfg.Metrics.Path, m.Handler().ServeHTTP), "metrics"); err != nil {
			return nil, err
		}
	}
	return r, nil
}
