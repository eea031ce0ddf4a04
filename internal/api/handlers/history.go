package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/presentation"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

const (
	chartWidth  = 560
	chartHeight = 200
)

// HistoryFetcher loads a stock's score history
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, ticker string, days int) ([]contracts.HistoryPoint, error)
}

// HistoryHandler serves the score history chart shown in the overlay
type HistoryHandler struct {
	fetcher HistoryFetcher
	days    int
	render  *Renderer
	logger  *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(fetcher HistoryFetcher, days int, render *Renderer, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		fetcher: fetcher,
		days:    days,
		render:  render,
		logger:  log,
	}
}

type historyFragment struct {
	Ticker string
	Chart  presentation.Chart
	Error  string
}

// Chart renders the history fragment
// GET /history/{ticker}
func (h *HistoryHandler) Chart(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	points, err := h.fetcher.FetchHistory(r.Context(), ticker, h.days)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to fetch history")
		h.render.Fragment(w, http.StatusOK, "history", "history", historyFragment{
			Ticker: ticker,
			Error:  "History is unavailable right now",
		})
		return
	}

	h.render.Fragment(w, http.StatusOK, "history", "history", historyFragment{
		Ticker: ticker,
		Chart:  presentation.ChartFor(points, chartWidth, chartHeight),
	})
}
