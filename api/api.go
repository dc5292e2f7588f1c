// Package api implements the dashboard's HTTP surface: the login flow,
// the access-control middleware, admin account management, the dashboard
// endpoints, and the push-channel upgrade guard.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/hearthd/hearthd/auth"
	"github.com/hearthd/hearthd/storage"
	"github.com/hearthd/hearthd/upstream"
	"github.com/hearthd/hearthd/ws"
)

//go:embed openapi.yaml
var openapiSpec []byte

// API holds the dependencies needed by the REST handlers and the
// websocket guard.
type API struct {
	store    storage.Store
	accounts *auth.Accounts
	tokens   *auth.TokenService
	limiter  *loginRateLimiter
	hub      *ws.Hub
	upstream *upstream.Client
	audit    *auditLogger

	weatherURL string
	infraURL   string
	alertFn    AlertFunc
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events. If not set, a
// default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithHub attaches the push-channel hub used by the websocket guard and
// by handlers that broadcast state changes.
func WithHub(hub *ws.Hub) Option {
	return func(a *API) {
		a.hub = hub
	}
}

// WithRateLimit overrides the login rate limiter's attempt ceiling and
// window.
func WithRateLimit(maxAttempts int, window time.Duration) Option {
	return func(a *API) {
		a.limiter = newLoginRateLimiter(maxAttempts, window)
	}
}

// WithUpstreams points the proxy endpoints at their collaborator
// services. Empty URLs leave an endpoint unconfigured (503).
func WithUpstreams(weatherURL, infraURL string) Option {
	return func(a *API) {
		a.weatherURL = weatherURL
		a.infraURL = infraURL
	}
}

// WithAlertFunc registers a callback for anomaly alerts such as a spike
// of failed logins.
func WithAlertFunc(fn AlertFunc) Option {
	return func(a *API) {
		a.alertFn = fn
	}
}

// New creates a new API instance over the given store and token service.
func New(store storage.Store, tokens *auth.TokenService, opts ...Option) *API {
	a := &API{
		store:    store,
		accounts: auth.NewAccounts(store),
		tokens:   tokens,
		limiter:  newLoginRateLimiter(defaultMaxAttempts, defaultWindow),
		upstream: upstream.NewClient(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	a.audit.metrics.alertFn = a.alertFn
	return a
}

// Router returns a chi.Router with all API routes mounted. The route
// groups are the access-control boundary: the login endpoint and the API
// docs are public, everything else requires a verified bearer token, and
// the admin subtree additionally requires the admin role. Handlers inside
// the protected groups may assume a verified identity is on the context.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/docs",
	}, nil))
	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/redoc",
	}, nil))

	r.Post("/auth/login", a.Login)

	r.Group(func(r chi.Router) {
		r.Use(a.AuthMiddleware)

		r.Get("/auth/me", a.Me)
		r.Get("/health", a.Health)
		r.Get("/kanban", a.GetKanban)
		r.Post("/kanban", a.UpdateKanban)
		r.Get("/notifications", a.ListNotifications)
		r.Post("/notifications", a.AddNotification)
		r.Post("/notifications/{id}/read", a.MarkNotificationRead)
		r.Get("/weather", a.Weather)
		r.Get("/infra/status", a.InfraStatus)

		r.Route("/admin", func(r chi.Router) {
			r.Use(a.RequireAdmin)
			r.Get("/users", a.ListUsers)
			r.Post("/users", a.CreateUser)
			r.Put("/users/{id}", a.UpdateUser)
			r.Delete("/users/{id}", a.DeleteUser)
			r.Get("/labels/{username}", a.GetLabels)
			r.Put("/labels/{username}", a.PutLabels)
			r.Get("/permissions/{username}", a.GetPermissions)
			r.Put("/permissions/{username}", a.PutPermissions)
		})
	})

	return r
}
