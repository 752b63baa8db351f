package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"secureentry/dashboard/internal/auth"
	"secureentry/dashboard/internal/config"
	"secureentry/dashboard/internal/dashboard"
)

type SessionManager interface {
	Load(id string) (auth.Session, error)
	Save(sess auth.Session) (auth.Session, error)
	Rotate(sess auth.Session) (auth.Session, error)
	Destroy(id string) error
	TTL() time.Duration
}

type Actions interface {
	Login(sess auth.Session, userID, secret string) (auth.Session, error)
	Logout(sess auth.Session) auth.Session
	SubmitSuggestion(sess auth.Session, s dashboard.Suggestion) (auth.Session, error)
	ApplyFilters(sess auth.Session, f dashboard.ActivityFilter) (auth.Session, error)
	ExportLogs(sess auth.Session) (auth.Session, error)
}

type Renderer interface {
	Render(w io.Writer, st auth.State, flashes []auth.Flash, tab dashboard.Tab) error
	RenderHalted(w io.Writer) error
}

type Deps struct {
	Sessions SessionManager
	Actions  Actions
	Views    Renderer
	Logger   *slog.Logger
	Cookie   CookieConfig
	// Shutdown, when set, is called after the exit page has been written.
	Shutdown func()
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Cookie.Name == "" {
		deps.Cookie.Name = "secureentry_session"
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(deps.Logger), sameOriginMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/v1/info", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "secureentry-dashboard",
			"version": "0.1.0",
		})
	}).Methods(http.MethodGet)

	registerPageHandlers(r, &pages{deps: deps})

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
