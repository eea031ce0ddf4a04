package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/presentation"
)

// rankingsCmd represents the rankings command
var rankingsCmd = &cobra.Command{
	Use:   "rankings [domain]",
	Short: "Show the current rankings",
	Long: `Fetches the current ranking snapshot.

Without arguments every domain's top stocks are listed together with the
best overall pick. With a domain name only that domain is fetched.

Example:
  go run ./cmd/ranker rankings
  go run ./cmd/ranker rankings "Clean Energy" --factors`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRankings,
}

var (
	rankingsFactors bool
)

func init() {
	rootCmd.AddCommand(rankingsCmd)

	// Flags
	rankingsCmd.Flags().BoolVar(&rankingsFactors, "factors", false, "print the factor breakdown of every stock")
}

func runRankings(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 1 {
		stocks, err := client.FetchDomainRankings(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetch %s rankings: %w", args[0], err)
		}
		PrintTitle(out, args[0])
		PrintStocks(out, stocks)
		if rankingsFactors {
			for _, s := range stocks {
				fmt.Fprintf(out, "\n%s\n", s.Ticker)
				PrintFactors(out, s)
			}
		}
		return nil
	}

	snap, err := client.FetchRankings(ctx)
	if err != nil {
		return fmt.Errorf("fetch rankings: %w", err)
	}

	PrintTitle(out, presentation.Header(snap))
	if snap.BestOverall != nil {
		PrintBestOverall(out, *snap.BestOverall)
	}
	fmt.Fprintf(out, "Last fetched: %s\n", FormatTime(snap.LastFetched))

	for _, d := range snap.Domains {
		fmt.Fprintf(out, "\n%s\n", d.Domain)
		PrintStocks(out, d.Top5)
		if rankingsFactors {
			for _, s := range d.Top5 {
				fmt.Fprintf(out, "\n%s\n", s.Ticker)
				PrintFactors(out, s)
			}
		}
	}

	return nil
}
