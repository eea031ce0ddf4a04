package ranker

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// FetchRankings fetches the full rankings snapshot (GET /rankings).
// Reads are not retried here; the next poll tries again.
func (c *Client) FetchRankings(ctx context.Context) (*contracts.RankingsSnapshot, error) {
	var snap contracts.RankingsSnapshot
	if err := c.getJSON(ctx, "fetch rankings", "/rankings", nil, nil, &snap); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"domains":      len(snap.Domains),
		"best_overall": snap.BestOverall != nil,
	}).Debug("Rankings fetched")

	return &snap, nil
}

// FetchDomainRankings fetches one domain's ranked stocks
// (GET /rankings/{domain}). An unknown domain is a 404 StatusError.
func (c *Client) FetchDomainRankings(ctx context.Context, domain string) ([]contracts.StockRanking, error) {
	var stocks []contracts.StockRanking
	path := "/rankings/" + url.PathEscape(domain)
	if err := c.getJSON(ctx, "fetch domain rankings", path, nil, nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// ListDomains fetches the domain names known to the ranker (GET /domains)
func (c *Client) ListDomains(ctx context.Context) ([]string, error) {
	var list contracts.DomainList
	if err := c.getJSON(ctx, "list domains", "/domains", nil, nil, &list); err != nil {
		return nil, err
	}
	if list.Domains == nil {
		list.Domains = []string{}
	}
	return list.Domains, nil
}

// FetchHistory fetches a ticker's daily score history for the last days
// days, oldest first (GET /history/{ticker}?days=N)
func (c *Client) FetchHistory(ctx context.Context, ticker string, days int) ([]contracts.HistoryPoint, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var points []contracts.HistoryPoint
	path := "/history/" + url.PathEscape(strings.ToUpper(ticker))
	if err := c.getJSON(ctx, "fetch history", path, params, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Health fetches the ranker's health report (GET /health)
func (c *Client) Health(ctx context.Context) (*contracts.Health, error) {
	var h contracts.Health
	if err := c.getJSON(ctx, "health", "/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
