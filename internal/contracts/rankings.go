package contracts

import "time"

// FactorNames is the fixed factor order used everywhere factors are listed
var FactorNames = []string{
	"momentum",
	"volume_change",
	"volatility",
	"relative_strength",
	"financial_ratio",
}

// RankingsSnapshot is the full ranking payload served by GET /api/rankings
// ⭐ SSOT: replaced wholesale on every refetch, never mutated in place
type RankingsSnapshot struct {
	Domains     []DomainRanking `json:"domains"`
	BestOverall *StockRanking   `json:"best_overall"`
	LastFetched *time.Time      `json:"last_fetched,omitempty"`
}

// DomainRanking holds the top stocks of one domain, best first
type DomainRanking struct {
	Domain string         `json:"domain"`
	Top5   []StockRanking `json:"top5"`
}

// StockRanking is one ranked stock
type StockRanking struct {
	Ticker         string     `json:"ticker"`
	CompositeScore float64    `json:"composite_score"` // 0..100
	Rank           int        `json:"rank"`            // 1-based
	Factors        Factors    `json:"factors"`
	LongTermScore  *float64   `json:"long_term_score,omitempty"`
	ComputedAt     *time.Time `json:"computed_at,omitempty"`
}

// Factors holds normalized factor values. nil means the ranker had no value.
type Factors struct {
	Momentum         *float64 `json:"momentum"`
	VolumeChange     *float64 `json:"volume_change"`
	Volatility       *float64 `json:"volatility"`
	RelativeStrength *float64 `json:"relative_strength"`
	FinancialRatio   *float64 `json:"financial_ratio"`
}

// Get returns the factor value by its wire name
func (f Factors) Get(name string) *float64 {
	switch name {
	case "momentum":
		return f.Momentum
	case "volume_change":
		return f.VolumeChange
	case "volatility":
		return f.Volatility
	case "relative_strength":
		return f.RelativeStrength
	case "financial_ratio":
		return f.FinancialRatio
	default:
		return nil
	}
}

// DomainNames returns the snapshot's domain names in snapshot order
func (s *RankingsSnapshot) DomainNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Domains))
	for _, d := range s.Domains {
		names = append(names, d.Domain)
	}
	return names
}

// Stocks returns the top stocks of domain, or nil if the domain is absent
func (s *RankingsSnapshot) Stocks(domain string) []StockRanking {
	if s == nil {
		return nil
	}
	for _, d := range s.Domains {
		if d.Domain == domain {
			return d.Top5
		}
	}
	return nil
}

// FindStock looks a ticker up across every domain
func (s *RankingsSnapshot) FindStock(ticker string) (StockRanking, bool) {
	if s == nil {
		return StockRanking{}, false
	}
	if s.BestOverall != nil && s.BestOverall.Ticker == ticker {
		return *s.BestOverall, true
	}
	for _, d := range s.Domains {
		for _, st := range d.Top5 {
			if st.Ticker == ticker {
				return st, true
			}
		}
	}
	return StockRanking{}, false
}

// HistoryPoint is one daily snapshot of a ticker's score
type HistoryPoint struct {
	SnapDate       string  `json:"snap_date"` // YYYY-MM-DD
	CompositeScore float64 `json:"composite_score"`
	Rank           int     `json:"rank"`
	TrendSlope     float64 `json:"trend_slope"`
}

// Health is the ranking API's health report
type Health struct {
	Status        string     `json:"status"`
	LastFetched   *time.Time `json:"last_fetched"`
	DataAvailable bool       `json:"data_available"`
	Timestamp     time.Time  `json:"timestamp"`
}
