package api

import (
	"fmt"
	"net/http"

	"github.com/yarin-claude-code/stocks/internal/api/handlers"
	"github.com/yarin-claude-code/stocks/internal/customdomains"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/internal/feed"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
	"github.com/yarin-claude-code/stocks/pkg/redis"
)

// Dependencies are the long-lived components the HTTP layer serves from
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Recorder // nil when metrics are disabled
	Client   *ranker.Client
	Feed     *feed.Feed
	Sessions *viewstate.Manager
	Cache    *redis.Cache
	Limiter  *redis.RateLimiter
	Clock    handlers.MarketClock
	Jobs     handlers.JobStatsSource // nil when no scheduler runs
}

// NewHandler builds every route handler and the router around them
func NewHandler(d Dependencies) (http.Handler, error) {
	render, err := handlers.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	log := d.Logger.WithField("component", "http")
	dash := d.Config.Dashboard

	newEditor := func(sessionID string) *customdomains.Editor {
		return customdomains.NewEditor(sessionID, d.Client, d.Cache, d.Limiter, dash.WriteLimit, d.Logger)
	}

	h := Handlers{
		Auth:          handlers.NewAuthHandler(d.Sessions, render, dash.CookieSecure, log),
		Dashboard:     handlers.NewDashboardHandler(d.Feed, d.Clock, render, dash.PollInterval, log),
		History:       handlers.NewHistoryHandler(d.Client, dash.HistoryDays, render, log),
		CustomDomains: handlers.NewCustomDomainHandler(newEditor, d.Clock, render, log),
		Health:        handlers.NewHealthHandler(d.Feed, d.Client, d.Jobs, log),
	}

	return NewRouter(h, RouterOptions{
		Sessions:      d.Sessions,
		Metrics:       d.Metrics,
		SecureCookies: dash.CookieSecure,
	}, d.Logger), nil
}
