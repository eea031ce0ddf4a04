package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/market"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ranking API and market status",
	Long: `Checks the ranking API health endpoint and the US market clock.

Example:
  go run ./cmd/ranker status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	PrintTitle(out, "Smart Stock Ranker status")

	clock := market.NewClock(cfg.Dashboard.MarketHolidays)
	marketState := "Closed"
	if clock.IsOpen() {
		marketState = "Open"
	}
	PrintKeyValue(out, "Market", marketState, 14)
	PrintKeyValue(out, "Ranking API", cfg.APIBaseURL(), 14)

	h, err := client.Health(cmd.Context())
	if err != nil {
		PrintKeyValue(out, "API status", "unreachable", 14)
		PrintError(out, err.Error())
		return err
	}

	PrintKeyValue(out, "API status", h.Status, 14)
	PrintKeyValue(out, "Data", fmt.Sprintf("%t", h.DataAvailable), 14)
	PrintKeyValue(out, "Last fetched", FormatTime(h.LastFetched), 14)
	return nil
}
