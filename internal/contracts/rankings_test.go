package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sampleSnapshot() *RankingsSnapshot {
	best := StockRanking{Ticker: "NVDA", CompositeScore: 91, Rank: 1}
	return &RankingsSnapshot{
		Domains: []DomainRanking{
			{Domain: "AI", Top5: []StockRanking{best, {Ticker: "MSFT", CompositeScore: 80, Rank: 2}}},
			{Domain: "Energy", Top5: []StockRanking{{Ticker: "XOM", CompositeScore: 60, Rank: 1}}},
		},
		BestOverall: &best,
	}
}

func TestDomainNames(t *testing.T) {
	assert.Equal(t, []string{"AI", "Energy"}, sampleSnapshot().DomainNames())

	var nilSnap *RankingsSnapshot
	assert.Nil(t, nilSnap.DomainNames())
}

func TestStocks(t *testing.T) {
	s := sampleSnapshot()
	assert.Len(t, s.Stocks("AI"), 2)
	assert.Nil(t, s.Stocks("Crypto"))
}

func TestFindStock(t *testing.T) {
	s := sampleSnapshot()

	st, ok := s.FindStock("XOM")
	require.True(t, ok)
	assert.Equal(t, 60.0, st.CompositeScore)

	_, ok = s.FindStock("ZZZ")
	assert.False(t, ok)
}

func TestFactorsGet(t *testing.T) {
	fs := Factors{Momentum: f(0.5), FinancialRatio: f(-1)}
	assert.Equal(t, 0.5, *fs.Get("momentum"))
	assert.Equal(t, -1.0, *fs.Get("financial_ratio"))
	assert.Nil(t, fs.Get("volatility"))
	assert.Nil(t, fs.Get("unknown"))
}

func TestDecodeRankingsPayload(t *testing.T) {
	// Payload shape as served by the ranking API, including null factors
	payload := `{
		"domains": [{"domain": "AI", "top5": [{
			"ticker": "NVDA", "composite_score": 91.2, "rank": 1,
			"factors": {"momentum": 0.031, "volume_change": null, "volatility": -0.4,
			            "relative_strength": 1.2, "financial_ratio": null},
			"computed_at": "2025-03-03T14:00:00Z"
		}]}],
		"best_overall": null,
		"last_fetched": "2025-03-03T14:00:00Z"
	}`

	var s RankingsSnapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	require.Len(t, s.Domains, 1)
	st := s.Domains[0].Top5[0]
	assert.Nil(t, s.BestOverall)
	assert.Nil(t, st.Factors.VolumeChange)
	assert.InDelta(t, 0.031, *st.Factors.Momentum, 1e-9)
	require.NotNil(t, s.LastFetched)
	require.NotNil(t, st.ComputedAt)
}
