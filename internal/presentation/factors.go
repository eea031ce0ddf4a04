package presentation

import (
	"strconv"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

var factorWeights = map[string]float64{
	"momentum":          0.30,
	"volume_change":     0.20,
	"volatility":        0.20,
	"relative_strength": 0.15,
	"financial_ratio":   0.15,
}

var factorLabels = map[string]string{
	"momentum":          "Momentum",
	"volume_change":     "Volume Change",
	"volatility":        "Volatility",
	"relative_strength": "Relative Strength",
	"financial_ratio":   "Financial Ratio",
}

// FactorRow is one line of the score breakdown
type FactorRow struct {
	Name     string
	Label    string
	Weight   string // "30%"
	HasValue bool
	Value    string // three decimals, or "N/A"
	Positive bool
	BarPct   float64 // 0..100, a z-score clamped to [-3, 3]
}

// FactorRows lists the factors in their fixed order
func FactorRows(f contracts.Factors) []FactorRow {
	rows := make([]FactorRow, 0, len(contracts.FactorNames))
	for _, name := range contracts.FactorNames {
		row := FactorRow{
			Name:   name,
			Label:  factorLabels[name],
			Weight: strconv.FormatFloat(factorWeights[name]*100, 'f', 0, 64) + "%",
			Value:  "N/A",
		}
		if v := f.Get(name); v != nil {
			row.HasValue = true
			row.Value = strconv.FormatFloat(*v, 'f', 3, 64)
			row.Positive = *v >= 0
			row.BarPct = (clamp(*v, -3, 3) + 3) / 6 * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// Breakdown is the stock detail overlay
type Breakdown struct {
	Ticker  string
	Rank    int
	Grade   Grade
	Ring    Ring
	Factors []FactorRow
}

// BreakdownFor builds the overlay for a selected stock
func BreakdownFor(s contracts.StockRanking) Breakdown {
	return Breakdown{
		Ticker:  s.Ticker,
		Rank:    s.Rank,
		Grade:   GradeFor(s.CompositeScore),
		Ring:    RingFor(s.CompositeScore, 40, 8),
		Factors: FactorRows(s.Factors),
	}
}
