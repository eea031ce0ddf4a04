package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/presentation"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

// PrintTitle prints a formatted section title
func PrintTitle(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i == len(values)-1 {
			fmt.Fprint(w, val)
			break
		}
		fmt.Fprintf(w, "%-*s  ", widths[i], val)
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

var stockColumns = []string{"Rank", "Ticker", "Score", "Grade"}
var stockWidths = []int{4, 8, 6, 10}

// PrintStocks prints ranked stocks as a table
func PrintStocks(w io.Writer, stocks []contracts.StockRanking) {
	PrintTableHeader(w, stockColumns, stockWidths)
	for _, s := range stocks {
		PrintTableRow(w, []string{
			"#" + strconv.Itoa(s.Rank),
			s.Ticker,
			presentation.ScoreText(s.CompositeScore),
			presentation.GradeFor(s.CompositeScore).Label,
		}, stockWidths)
	}
}

// PrintBestOverall prints the best overall banner
func PrintBestOverall(w io.Writer, s contracts.StockRanking) {
	b := presentation.BestOverallFor(s)
	line := fmt.Sprintf("Best overall: %s (score %s)", b.Ticker, b.Score)
	if b.HasMomentum {
		line += ", 5-day momentum " + b.Momentum
	}
	fmt.Fprintln(w, line)
}

// PrintFactors prints the factor breakdown of one stock
func PrintFactors(w io.Writer, s contracts.StockRanking) {
	for _, row := range presentation.FactorRows(s.Factors) {
		PrintKeyValue(w, fmt.Sprintf("%s (%s)", row.Label, row.Weight), row.Value, 24)
	}
}

// FormatTime formats an optional timestamp, "-" when absent
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05 MST")
}
