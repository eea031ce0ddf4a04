package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/presentation"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// SnapshotSource is the shared rankings feed
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*contracts.RankingsSnapshot, error)
	Current() *contracts.RankingsSnapshot
}

// MarketClock reports whether the US market is open now
type MarketClock interface {
	IsOpen() bool
}

// DashboardHandler serves the rankings dashboard
// ⭐ SSOT: dashboard pages are handled only here
type DashboardHandler struct {
	feed         SnapshotSource
	clock        MarketClock
	render       *Renderer
	pollInterval time.Duration
	logger       *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(feed SnapshotSource, clock MarketClock, render *Renderer, pollInterval time.Duration, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		feed:         feed,
		clock:        clock,
		render:       render,
		pollInterval: pollInterval,
		logger:       log,
	}
}

type dashboardPage struct {
	basePage
	View        viewstate.View
	Best        *presentation.BestOverall
	Cards       []presentation.StockCard
	Selected    *presentation.Breakdown
	LastFetched string
	PollMillis  int64
}

// Page renders the dashboard
// GET /dashboard
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, http.StatusOK, "dashboard", h.resolve(r))
}

// Fragment renders only the rankings block, for polling in place
// GET /dashboard/fragment
func (h *DashboardHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	h.render.Fragment(w, http.StatusOK, "dashboard", "rankings", h.resolve(r))
}

// SelectDomain switches the active domain and saves it as the preference
// POST /dashboard/domain
func (h *DashboardHandler) SelectDomain(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("domain"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "domain is required")
		return
	}
	if !slices.Contains(h.feed.Current().DomainNames(), name) {
		respondError(w, http.StatusBadRequest, "domain is not in the current rankings")
		return
	}

	viewstate.FromContext(r.Context()).SelectDomain(name)
	seeOther(w, r, "/dashboard")
}

// SelectStock opens the detail overlay for a ranked stock
// POST /dashboard/stock
func (h *DashboardHandler) SelectStock(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(r.PostFormValue("ticker"))

	stock, ok := h.feed.Current().FindStock(ticker)
	if !ok {
		respondError(w, http.StatusNotFound, "Stock not found in current rankings")
		return
	}

	viewstate.FromContext(r.Context()).SelectStock(stock)
	seeOther(w, r, "/dashboard")
}

// CloseStock closes the detail overlay
// POST /dashboard/stock/close
func (h *DashboardHandler) CloseStock(w http.ResponseWriter, r *http.Request) {
	viewstate.FromContext(r.Context()).CloseStock()
	seeOther(w, r, "/dashboard")
}

// Visibility records the page's document.visibilityState
// POST /dashboard/visibility
func (h *DashboardHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	state := r.PostFormValue("state")
	if state != "visible" && state != "hidden" {
		respondError(w, http.StatusBadRequest, "state must be visible or hidden")
		return
	}

	viewstate.FromContext(r.Context()).SetVisible(state == "visible")
	w.WriteHeader(http.StatusNoContent)
}

// View returns the resolved view-state as JSON
// GET /api/view
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := viewstate.FromContext(ctx)
	s.EnsurePreferences(ctx)
	respondJSON(w, http.StatusOK, s.Resolve(h.snapshot(ctx)))
}

func (h *DashboardHandler) resolve(r *http.Request) dashboardPage {
	ctx := r.Context()
	s := viewstate.FromContext(ctx)

	s.EnsurePreferences(ctx)
	snap := h.snapshot(ctx)
	v := s.Resolve(snap)

	page := dashboardPage{
		basePage:   newBasePage("Dashboard", auth.FromContext(ctx), h.clock.IsOpen()),
		View:       v,
		Cards:      presentation.StockCards(v.Stocks),
		PollMillis: h.pollInterval.Milliseconds(),
	}
	page.Header = presentation.Header(snap)

	if v.BestOverall != nil {
		best := presentation.BestOverallFor(*v.BestOverall)
		page.Best = &best
	}
	if v.Selected != nil {
		b := presentation.BreakdownFor(*v.Selected)
		page.Selected = &b
	}
	if v.LastFetched != nil {
		page.LastFetched = v.LastFetched.Local().Format("Jan 2, 15:04 MST")
	}

	return page
}

// snapshot returns nil while rankings are unavailable; the page then
// stays in its loading state
func (h *DashboardHandler) snapshot(ctx context.Context) *contracts.RankingsSnapshot {
	snap, err := h.feed.Snapshot(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Rankings unavailable, showing loading state")
		return nil
	}
	return snap
}
