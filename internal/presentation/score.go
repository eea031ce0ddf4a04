// Package presentation turns ranking data into view models for the
// dashboard templates and the CLI. Nothing here performs I/O.
package presentation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// Grade is a verbal rating of a composite score
type Grade struct {
	Label string
	Class string // css modifier
}

// GradeFor maps a composite score to its grade
func GradeFor(score float64) Grade {
	switch {
	case score >= 80:
		return Grade{Label: "Strong Buy", Class: "strong-buy"}
	case score >= 60:
		return Grade{Label: "Buy", Class: "buy"}
	case score >= 40:
		return Grade{Label: "Neutral", Class: "neutral"}
	case score >= 20:
		return Grade{Label: "Weak", Class: "weak"}
	default:
		return Grade{Label: "Avoid", Class: "avoid"}
	}
}

// Ring colours
const (
	ColorGood  = "#22c55e"
	ColorFair  = "#f59e0b"
	ColorPoor  = "#ef4444"
	ColorTrack = "#1e293b"
)

// RingColor picks the score ring colour
func RingColor(score float64) string {
	switch {
	case score >= 70:
		return ColorGood
	case score >= 45:
		return ColorFair
	default:
		return ColorPoor
	}
}

// Ring is the geometry of a circular score gauge
type Ring struct {
	Size          int // svg width and height
	Center        int
	Radius        float64
	Stroke        int
	Circumference float64
	Filled        float64 // dash length
	Rest          float64 // gap length
	Color         string
	Label         string // score rounded to an integer
}

// RingFor builds a gauge for score with the given radius and stroke
func RingFor(score, radius float64, stroke int) Ring {
	circ := 2 * math.Pi * radius
	filled := clamp(score, 0, 100) / 100 * circ
	size := int(math.Round(2*radius)) + 2*stroke
	return Ring{
		Size:          size,
		Center:        size / 2,
		Radius:        radius,
		Stroke:        stroke,
		Circumference: circ,
		Filled:        filled,
		Rest:          circ - filled,
		Color:         RingColor(score),
		Label:         strconv.FormatFloat(score, 'f', 0, 64),
	}
}

// ScoreText formats a composite score with one decimal
func ScoreText(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// StockCard is one entry of the domain grid
type StockCard struct {
	Ticker string
	Rank   int
	Score  string
}

// StockCards converts a domain's stocks to cards, keeping order
func StockCards(stocks []contracts.StockRanking) []StockCard {
	cards := make([]StockCard, 0, len(stocks))
	for _, s := range stocks {
		cards = append(cards, StockCard{
			Ticker: s.Ticker,
			Rank:   s.Rank,
			Score:  ScoreText(s.CompositeScore),
		})
	}
	return cards
}

// BestOverall is the banner for the top-ranked stock
type BestOverall struct {
	Ticker           string
	Score            string
	Ring             Ring
	HasMomentum      bool
	Momentum         string // signed percent, e.g. "+1.23%"
	MomentumPositive bool
}

// BestOverallFor builds the banner. The momentum factor is shown as a
// five-day percent change.
func BestOverallFor(s contracts.StockRanking) BestOverall {
	b := BestOverall{
		Ticker: s.Ticker,
		Score:  ScoreText(s.CompositeScore),
		Ring:   RingFor(s.CompositeScore, 28, 6),
	}
	if m := s.Factors.Momentum; m != nil {
		pct := *m * 100
		text := strconv.FormatFloat(pct, 'f', 2, 64)
		if text == "-0.00" {
			text = "0.00"
		}
		b.HasMomentum = true
		b.MomentumPositive = text[0] != '-'
		if b.MomentumPositive {
			text = "+" + text
		}
		b.Momentum = text + "%"
	}
	return b
}

// Header returns the dashboard subtitle. Before the first snapshot arrives
// it is empty.
func Header(snap *contracts.RankingsSnapshot) string {
	switch {
	case snap == nil:
		return ""
	case snap.BestOverall != nil:
		return fmt.Sprintf("Algorithm Chose: %s To Invest", snap.BestOverall.Ticker)
	default:
		return "Quantitative ranking · refreshes every 5 min"
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
