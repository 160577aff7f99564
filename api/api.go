// Package api exposes the session and credential management REST surface
// for the wordtrove vocabulary app: login with an optional second factor,
// bearer-session validation, and session listing/revocation.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/wordtrove/authd/account"
	"github.com/wordtrove/authd/mfa"
	"github.com/wordtrove/authd/session"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	verifier *account.Verifier
	dir      account.Directory
	sessions *session.Store
	mfa      *mfa.Manager
	audit    *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// New creates a new API instance.
func New(dir account.Directory, sessions *session.Store, challenges *mfa.Manager, opts ...Option) *API {
	a := &API{
		verifier: account.NewVerifier(dir),
		dir:      dir,
		sessions: sessions,
		mfa:      challenges,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/login", a.Login)
	r.Post("/auth/mfa/verify", a.VerifyMFA)
	r.Post("/auth/logout", a.Logout)

	r.With(a.SessionGuard).Get("/me", a.Me)
	r.With(a.SessionGuard).Get("/sessions", a.ListSessions)
	r.With(a.SessionGuard).Delete("/sessions/{sessionID}", a.RevokeSession)

	return r
}
