package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/presentation"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [ticker]",
	Short: "Show a stock's score history",
	Long: `Fetches the daily composite score history of a ticker.

Example:
  go run ./cmd/ranker history NVDA
  go run ./cmd/ranker history nvda --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyDays int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	// Flags
	historyCmd.Flags().IntVar(&historyDays, "days", 30, "number of days")
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	points, err := client.FetchHistory(cmd.Context(), args[0], historyDays)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	PrintTitle(out, fmt.Sprintf("%s · last %d days", args[0], historyDays))
	if len(points) == 0 {
		PrintWarning(out, "No history available")
		return nil
	}

	widths := []int{10, 6, 4, 8}
	PrintTableHeader(out, []string{"Date", "Score", "Rank", "Trend"}, widths)
	for _, p := range points {
		trend := presentation.TrendFor(p.TrendSlope)
		PrintTableRow(out, []string{
			p.SnapDate,
			presentation.ScoreText(p.CompositeScore),
			"#" + strconv.Itoa(p.Rank),
			trend.Arrow + " " + trend.Label,
		}, widths)
	}

	return nil
}
