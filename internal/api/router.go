package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yarin-claude-code/stocks/internal/api/handlers"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

// Handlers groups the route handlers
type Handlers struct {
	Auth          *handlers.AuthHandler
	Dashboard     *handlers.DashboardHandler
	History       *handlers.HistoryHandler
	CustomDomains *handlers.CustomDomainHandler
	Health        *handlers.HealthHandler
}

// RouterOptions configures cross-cutting middleware
type RouterOptions struct {
	Sessions      *viewstate.Manager
	Metrics       *metrics.Recorder // nil disables /metrics
	SecureCookies bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are defined only in this function
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Stateless endpoints
	r.HandleFunc("/health", h.Health.Check).Methods("GET")
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	// Everything else carries credentials and a view session
	app := r.NewRoute().Subrouter()
	app.Use(sessionMiddleware(opts.Sessions, opts.SecureCookies))

	app.HandleFunc("/", h.Auth.Root).Methods("GET")
	app.HandleFunc("/login", h.Auth.LoginPage).Methods("GET")
	app.HandleFunc("/login", h.Auth.Login).Methods("POST")
	app.HandleFunc("/logout", h.Auth.Logout).Methods("POST")

	pages := requireUser(false)
	app.Handle("/dashboard", pages(h.Dashboard.Page)).Methods("GET")
	app.Handle("/dashboard/fragment", pages(h.Dashboard.Fragment)).Methods("GET")
	app.Handle("/dashboard/domain", pages(h.Dashboard.SelectDomain)).Methods("POST")
	app.Handle("/dashboard/stock", pages(h.Dashboard.SelectStock)).Methods("POST")
	app.Handle("/dashboard/stock/close", pages(h.Dashboard.CloseStock)).Methods("POST")
	app.Handle("/dashboard/visibility", pages(h.Dashboard.Visibility)).Methods("POST")

	app.Handle("/history/{ticker}", pages(h.History.Chart)).Methods("GET")

	app.Handle("/domains/custom", pages(h.CustomDomains.Page)).Methods("GET")
	app.Handle("/domains/custom", pages(h.CustomDomains.Create)).Methods("POST")
	app.Handle("/domains/custom/{id:[0-9]+}", pages(h.CustomDomains.Save)).Methods("POST")
	app.Handle("/domains/custom/{id:[0-9]+}/edit", pages(h.CustomDomains.StartEdit)).Methods("POST")
	app.Handle("/domains/custom/{id:[0-9]+}/cancel", pages(h.CustomDomains.CancelEdit)).Methods("POST")
	app.Handle("/domains/custom/{id:[0-9]+}/delete", pages(h.CustomDomains.Delete)).Methods("POST")

	app.Handle("/api/view", requireUser(true)(h.Dashboard.View)).Methods("GET")

	// Apply middleware
	r.Use(recoveryMiddleware(log))
	r.Use(metricsMiddleware(opts.Metrics))
	r.Use(loggingMiddleware(log))

	return r
}
