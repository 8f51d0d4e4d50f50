// Package app wires the shelf server runtime: config, logging, storage,
// the auth HTTP surface and the listeners that serve it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"shelf/cmd/identity"
	authapi "shelf/cmd/internal/auth/api"
	"shelf/cmd/internal/auth/idpolicy"
	"shelf/cmd/internal/auth/ratelimit"
	"shelf/cmd/internal/auth/session"
	"shelf/cmd/internal/migrations"
	"shelf/cmd/security/password"
	"shelf/cmd/security/token"
)

// App owns the shared resources and the HTTP handler built on them.
type App struct {
	cfg Config
	log Logger

	dbPool   *pgxpool.Pool
	sessions session.Backend
	users    *identity.Service

	handler http.Handler
}

// New validates cfg and wires every component. Resources opened before a
// failure are released.
func New(ctx context.Context, cfg Config, log Logger) (_ *App, err error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if a.dbPool, err = openDB(ctx, cfg, log); err != nil {
		return nil, err
	}
	if a.sessions, err = openSessions(cfg.Session, a.dbPool, log); err != nil {
		return nil, err
	}
	if a.users, err = newUsers(cfg, a.dbPool); err != nil {
		return nil, err
	}

	tokens, err := token.NewService(cfg.Token)
	if err != nil {
		return nil, err
	}
	// Both layers share one cookie lifetime.
	cfg.Policy.TimeoutMinutes = cfg.Session.TimeoutMinutes
	policy, err := idpolicy.New(cfg.Policy, a.sessions)
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimit.New(cfg.RateLimit, a.sessions)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auth, err := authapi.NewHandler(log, cfg.Auth, authapi.Deps{
		Users:    a.users,
		Tokens:   tokens,
		Policy:   policy,
		Limiter:  limiter,
		Password: cfg.Password.Policy,
		Metrics:  authapi.NewMetrics(reg),
	})
	if err != nil {
		return nil, err
	}

	router := newRouter(log, cfg, a.dbPool, reg, auth)
	a.handler = WithRequestLogging(WithSecurityHeaders(WithCORS(router, cfg, log)), log)

	log.Info("app.wired",
		"db_enabled", a.dbPool != nil,
		"session_backend", cfg.Session.Backend,
		"identity_policy", cfg.Policy.Variant,
		"tls", cfg.TLSEnabled(),
	)
	return a, nil
}

// Handler is the fully wrapped API handler.
func (a *App) Handler() http.Handler { return a.handler }

// Users exposes the identity service for administrative commands.
func (a *App) Users() *identity.Service { return a.users }

// Run serves until ctx is cancelled or a listener fails, then shuts every
// listener down and releases resources.
//
// With TLS configured the API is served on HTTPSAddr and HTTPAddr redirects
// to it; otherwise HTTPAddr serves the API in plaintext.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.TLSEnabled() {
		secure := a.newServer(a.cfg.HTTPSAddr, a.handler)
		g.Go(func() error {
			a.log.Info("server.start", "addr", secure.Addr, "tls", true)
			return serve(secure.ListenAndServeTLS(a.cfg.TLSCertFile, a.cfg.TLSKeyFile))
		})
		g.Go(func() error { return a.shutdownOnDone(gctx, secure) })

		redirect := a.newServer(a.cfg.HTTPAddr, redirectHandler(a.cfg.HTTPSAddr))
		g.Go(func() error {
			a.log.Info("server.start", "addr", redirect.Addr, "redirect", true)
			return serve(redirect.ListenAndServe())
		})
		g.Go(func() error { return a.shutdownOnDone(gctx, redirect) })
	} else {
		plain := a.newServer(a.cfg.HTTPAddr, a.handler)
		g.Go(func() error {
			a.log.Warn("server.start", "addr", plain.Addr, "tls", false)
			return serve(plain.ListenAndServe())
		})
		g.Go(func() error { return a.shutdownOnDone(gctx, plain) })
	}

	g.Go(func() error {
		a.janitor(gctx, a.cfg.Session.PurgeInterval)
		return nil
	})

	err := g.Wait()
	if err != nil {
		a.log.Error("server.fail", "err", err)
		return err
	}
	a.log.Info("server.stopped")
	return nil
}

func (a *App) newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}
}

func (a *App) shutdownOnDone(ctx context.Context, srv *http.Server) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", srv.Addr, err)
	}
	return nil
}

// serve maps the normal shutdown result to nil.
func serve(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// janitor purges expired session records and rate counters until ctx ends.
func (a *App) janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(nonZeroDuration(every, time.Minute))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.purge(ctx)
		}
	}
}

func (a *App) purge(ctx context.Context) {
	n, err := a.sessions.Purge(ctx)
	if err != nil {
		a.log.Warn("session.purge.fail", "err", err, "timeout", session.IsTimeout(err))
		return
	}
	if n > 0 {
		a.log.Debug("session.purge", "removed", n)
	}
}

func (a *App) close() {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.log.Error("session.close.fail", "err", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// openDB returns nil when no database is configured.
func openDB(ctx context.Context, cfg Config, log Logger) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nil, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if cfg.Migrate {
		if err := migrations.RunPool(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("db.migrated")
	}
	log.Info("db.enabled.postgres_store")
	return pool, nil
}

// openSessions builds the configured backend behind the per-call deadline.
func openSessions(cfg session.Config, pool *pgxpool.Pool, log Logger) (session.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var b session.Backend
	switch cfg.BackendName() {
	case session.BackendMemory:
		log.Warn("session.backend.memory", "note", "identity and counters are not shared across processes")
		b = session.NewMemoryStore(cfg.TTL())
	case session.BackendPostgres:
		if pool == nil {
			return nil, fmt.Errorf("%w: postgres session backend without a database", ErrConfig)
		}
		b = session.NewPostgresStore(pool, cfg.TTL())
	case session.BackendBolt:
		bs, err := session.OpenBoltStore(cfg.BoltPath, cfg.TTL())
		if err != nil {
			return nil, err
		}
		b = bs
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", ErrConfig, cfg.Backend)
	}
	return session.Bounded(b, cfg.OpTimeout), nil
}

// newUsers uses Postgres when a pool is available, memory otherwise.
func newUsers(cfg Config, pool *pgxpool.Pool) (*identity.Service, error) {
	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	var store identity.Store
	if pool != nil {
		ps, err := identity.NewPostgresStore(pool)
		if err != nil {
			return nil, err
		}
		store = ps
	} else {
		store = identity.NewMemoryStore()
	}
	return identity.NewService(store, password.NewPool(hasher, cfg.Password.Workers), cfg.Password.Policy)
}
