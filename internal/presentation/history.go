package presentation

import (
	"strconv"
	"strings"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// Trend classifies a score slope
type Trend struct {
	Label string
	Arrow string
	Class string
}

// TrendFor maps a trend slope to a badge. Slopes within ±0.5 are flat.
func TrendFor(slope float64) Trend {
	switch {
	case slope > 0.5:
		return Trend{Label: "Up", Arrow: "↑", Class: "up"}
	case slope < -0.5:
		return Trend{Label: "Down", Arrow: "↓", Class: "down"}
	default:
		return Trend{Label: "Flat", Arrow: "→", Class: "flat"}
	}
}

// Chart is an SVG line chart of composite scores on a fixed 0..100 axis
type Chart struct {
	Width, Height int
	Points        string // polyline points attribute
	First, Last   string // date labels
	Empty         bool
	Trend         Trend // from the most recent point
	GridLines     []GridLine
}

// GridLine is a horizontal guide at a score level
type GridLine struct {
	Y     float64
	Label string
}

const chartPad = 24

// ChartFor lays out points oldest first across width x height
func ChartFor(points []contracts.HistoryPoint, width, height int) Chart {
	c := Chart{Width: width, Height: height, Empty: len(points) == 0}

	plotW := float64(width - 2*chartPad)
	plotH := float64(height - 2*chartPad)
	y := func(score float64) float64 {
		return float64(chartPad) + plotH*(1-clamp(score, 0, 100)/100)
	}

	for _, level := range []float64{0, 25, 50, 75, 100} {
		c.GridLines = append(c.GridLines, GridLine{Y: y(level), Label: strconv.Itoa(int(level))})
	}

	if c.Empty {
		return c
	}

	var sb strings.Builder
	for i, p := range points {
		x := float64(chartPad)
		if len(points) > 1 {
			x += plotW * float64(i) / float64(len(points)-1)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(y(p.CompositeScore), 'f', 1, 64))
	}

	c.Points = sb.String()
	c.First = points[0].SnapDate
	c.Last = points[len(points)-1].SnapDate
	c.Trend = TrendFor(points[len(points)-1].TrendSlope)
	return c
}
