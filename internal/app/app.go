package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/config"
	handler "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/handler/http"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/session"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/state"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/internal/store"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/health"
)

// App wires together all dependencies and runs the client shell.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	scopes     *state.Manager
	detach     func()
	httpServer *http.Server
}

// NewApp creates the application, initializing the durable store, the session
// context, and the scope manager that binds collections to the session.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	st, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	sessions := session.NewContext()
	tokens := session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	a.scopes = state.NewManager(st, logger)
	a.detach = a.scopes.Attach(sessions)

	healthHandler := health.NewHandler()
	if rs, ok := st.(*store.RedisStore); ok {
		healthHandler.Register("redis", rs.Ping)
	}

	router := handler.NewRouter(
		sessions,
		tokens,
		a.scopes,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		healthHandler,
		logger,
	)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// buildStore selects the durable store backend from configuration.
func (a *App) buildStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.StoreBackend {
	case config.StoreMemory:
		a.logger.Info("using in-memory state store")
		return store.NewMemoryStore(), nil

	case config.StoreFile:
		fs, err := store.NewFileStore(a.cfg.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		a.logger.Info("using file state store", slog.String("dir", a.cfg.StoreDir))
		return fs, nil

	case config.StoreRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.logger.Info("using redis state store",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
		)
		ttl := time.Duration(a.cfg.StateTTLDays) * 24 * time.Hour
		return store.NewRedisStore(a.rdb, ttl), nil

	default:
		return nil, fmt.Errorf("unknown state store backend: %q", a.cfg.StoreBackend)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.detach != nil {
		a.detach()
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
