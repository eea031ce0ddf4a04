package rankertest

import (
	"strings"
	"time"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

// Stock builds a ranked stock with a full factor set
func Stock(ticker string, score float64, rank int) contracts.StockRanking {
	return contracts.StockRanking{
		Ticker:         ticker,
		CompositeScore: score,
		Rank:           rank,
		Factors: contracts.Factors{
			Momentum:         ptr(0.0123),
			VolumeChange:     ptr(0.4),
			Volatility:       ptr(-0.8),
			RelativeStrength: ptr(1.1),
			FinancialRatio:   nil,
		},
	}
}

// Snapshot builds a snapshot with one stock per domain; the first domain's
// stock is the best overall
func Snapshot(domains ...string) *contracts.RankingsSnapshot {
	fetched := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
	snap := &contracts.RankingsSnapshot{
		Domains:     make([]contracts.DomainRanking, 0, len(domains)),
		LastFetched: &fetched,
	}
	for i, d := range domains {
		st := Stock(tickerFor(d), 90-float64(i*10), 1)
		snap.Domains = append(snap.Domains, contracts.DomainRanking{
			Domain: d,
			Top5:   []contracts.StockRanking{st},
		})
	}
	if len(snap.Domains) > 0 {
		best := snap.Domains[0].Top5[0]
		snap.BestOverall = &best
	}
	return snap
}

func tickerFor(domain string) string {
	if len(domain) > 4 {
		domain = domain[:4]
	}
	return strings.ToUpper(domain) + "X"
}
