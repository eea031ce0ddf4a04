package ranker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/internal/external/ranker/rankertest"
	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/httputil"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

const token = "user-token"

func newClient(t *testing.T, api *rankertest.Server, tok string) *ranker.Client {
	t.Helper()
	cfg := &config.Config{Env: "test"}
	hc := httputil.New(cfg, logger.Nop()).DisableRetry()
	return ranker.NewClient(hc, api.BaseURL(), auth.NewStatic(tok), logger.Nop())
}

func TestFetchRankings(t *testing.T) {
	api := rankertest.NewServer(rankertest.Snapshot("AI", "Energy"))
	defer api.Close()

	snap, err := newClient(t, api, "").FetchRankings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AI", "Energy"}, snap.DomainNames())
	require.NotNil(t, snap.BestOverall)
	assert.Equal(t, "AIX", snap.BestOverall.Ticker)
	assert.NotNil(t, snap.LastFetched)
}

func TestFetchRankingsFailure(t *testing.T) {
	api := rankertest.NewServer(rankertest.Snapshot("AI"))
	defer api.Close()
	api.Fail("rankings", 503, `{"detail":"down"}`)

	_, err := newClient(t, api, "").FetchRankings(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ranker.ErrFetch)

	var se *ranker.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.StatusCode)
	// No client-side retry for reads
	assert.Equal(t, 1, api.Calls("rankings"))
}

func TestFetchDomainRankings(t *testing.T) {
	api := rankertest.NewServer(rankertest.Snapshot("AI", "Clean Energy"))
	defer api.Close()
	c := newClient(t, api, "")

	stocks, err := c.FetchDomainRankings(context.Background(), "Clean Energy")
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "CLEAX", stocks[0].Ticker)

	_, err = c.FetchDomainRankings(context.Background(), "Nope")
	assert.True(t, ranker.IsNotFound(err))
}

func TestListDomains(t *testing.T) {
	api := rankertest.NewServer(rankertest.Snapshot("AI", "Energy", "Health"))
	defer api.Close()

	names, err := newClient(t, api, "").ListDomains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "Energy", "Health"}, names)
}

func TestFetchHistory(t *testing.T) {
	api := rankertest.NewServer(nil)
	defer api.Close()
	api.SetHistory("AAPL", []contracts.HistoryPoint{
		{SnapDate: "2025-03-01", CompositeScore: 60, Rank: 2, TrendSlope: 0.1},
		{SnapDate: "2025-03-02", CompositeScore: 64, Rank: 1, TrendSlope: 0.7},
	})

	points, err := newClient(t, api, "").FetchHistory(context.Background(), "aapl", 30)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 0.7, points[1].TrendSlope)
	assert.Equal(t, "days=30", api.LastHistoryQuery())
}

func TestHealth(t *testing.T) {
	api := rankertest.NewServer(rankertest.Snapshot("AI"))
	defer api.Close()

	h, err := newClient(t, api, "").Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.True(t, h.DataAvailable)
}

func TestTransportErrorIsFetchError(t *testing.T) {
	api := rankertest.NewServer(nil)
	c := newClient(t, api, "")
	api.Close()

	_, err := c.FetchRankings(context.Background())
	assert.True(t, errors.Is(err, ranker.ErrFetch))
}
