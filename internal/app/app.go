package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"secureentry/dashboard/internal/auth"
	"secureentry/dashboard/internal/config"
	"secureentry/dashboard/internal/dashboard"
	"secureentry/dashboard/internal/httpserver"
	"secureentry/dashboard/internal/observability"
)

type App struct {
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	server   *httpserver.Server
	sessions *auth.SessionManager

	exitOnce sync.Once
	exitCh   chan struct{}
}

func New(cfg config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.LogLevel)

	var err error
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	credentials, err := newCredentials(cfg, db, logger)
	if err != nil {
		closeDB()
		return nil, err
	}
	sessionStore, err := newSessionStore(cfg, db)
	if err != nil {
		closeDB()
		return nil, err
	}

	sessions, err := auth.NewSessionManager(sessionStore, cfg.Session.TTL)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("create session manager: %w", err)
	}
	purged, err := sessions.PurgeExpired()
	if err != nil {
		closeDB()
		return nil, err
	}
	if purged > 0 {
		logger.Info("expired sessions purged", "count", purged)
	}

	authenticator, err := auth.NewAuthenticator(credentials)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("create authenticator: %w", err)
	}
	controller, err := dashboard.NewController(authenticator)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("create controller: %w", err)
	}

	var demo auth.CredentialLister
	if cfg.Auth.ShowDemoCredentials {
		demo = credentials
	}
	views, err := dashboard.NewRenderer(demo)
	if err != nil {
		closeDB()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	a := &App{
		cfg:      cfg,
		log:      logger,
		db:       db,
		sessions: sessions,
		exitCh:   make(chan struct{}),
	}

	deps := httpserver.Deps{
		Sessions: sessions,
		Actions:  controller,
		Views:    views,
		Logger:   logger,
		Cookie: httpserver.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
	}
	if cfg.ExitShutsDown {
		deps.Shutdown = a.requestExit
	}
	a.server = httpserver.New(cfg.HTTP, deps)

	return a, nil
}

type credentialSource interface {
	auth.CredentialLookup
	auth.CredentialLister
}

// newCredentials picks the credential table: Postgres when a database is
// configured, then a JSON file, then the built-in demo table.
func newCredentials(cfg config.Config, db *sql.DB, logger *slog.Logger) (credentialSource, error) {
	var store auth.CredentialStore
	var err error
	switch {
	case db != nil:
		store, err = auth.NewPostgresCredentialStore(db)
		if err != nil {
			return nil, fmt.Errorf("create postgres credential store: %w", err)
		}
	case cfg.Auth.CredentialsFile != "":
		store, err = auth.NewFileCredentialStore(cfg.Auth.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("create file credential store: %w", err)
		}
	default:
		return auth.NewStaticCredentials(auth.DemoCredentials()), nil
	}

	if cfg.Auth.SeedDemoCredentials {
		seeded, err := auth.SeedCredentials(store, auth.DemoCredentials())
		if err != nil {
			return nil, fmt.Errorf("seed demo credentials: %w", err)
		}
		if seeded {
			logger.Info("demo credentials seeded")
		}
	}
	return store, nil
}

func newSessionStore(cfg config.Config, db *sql.DB) (auth.SessionStore, error) {
	switch {
	case db != nil:
		s, err := auth.NewPostgresSessionStore(db)
		if err != nil {
			return nil, fmt.Errorf("create postgres session store: %w", err)
		}
		return s, nil
	case cfg.Session.StateFile != "":
		s, err := auth.NewFileSessionStore(cfg.Session.StateFile)
		if err != nil {
			return nil, fmt.Errorf("create file session store: %w", err)
		}
		return s, nil
	default:
		return auth.NewInMemorySessionStore(), nil
	}
}

func (a *App) requestExit() {
	a.exitOnce.Do(func() { close(a.exitCh) })
}

func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	purgeCtx, stopPurge := context.WithCancel(ctx)
	purgeDone := make(chan struct{})
	go func() {
		defer close(purgeDone)
		a.purgeLoop(purgeCtx, a.cfg.Session.PurgeInterval)
	}()
	defer func() {
		stopPurge()
		<-purgeDone
	}()

	errCh := make(chan error, 1)

	go func() {
		a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
		return a.shutdown()
	case <-a.exitCh:
		a.log.Warn("exit requested from dashboard")
		return a.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server exited: %w", err)
	}
}

// purgeLoop drops expired sessions every interval until ctx is done.
func (a *App) purgeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sessions.PurgeExpired()
			if err != nil {
				a.log.Error("purge expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				a.log.Info("expired sessions purged", "count", n)
			}
		}
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
