package commands

import (
	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/httputil"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

var (
	// Global flags
	apiURL  string
	token   string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ranker",
	Short: "Smart Stock Ranker - dashboard and ranking API client",
	Long: `Smart Stock Ranker CLI

Serves the rankings dashboard and talks to the ranking API directly.

Usage:
  go run ./cmd/ranker [command]

Examples:
  go run ./cmd/ranker serve
  go run ./cmd/ranker rankings
  go run ./cmd/ranker rankings "Clean Energy"
  go run ./cmd/ranker history NVDA --days 60
  go run ./cmd/ranker domains custom create "My Picks" "aapl, msft"`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "ranking API base URL (default RANKER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (default RANKER_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.Ranker.BaseURL = apiURL
	}
	if token != "" {
		cfg.Ranker.AccessToken = token
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newClient builds a ranking API client authenticated with the configured
// token. CLI reads keep the retrying HTTP client.
func newClient() (*ranker.Client, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !verbose {
		cfg.LogLevel = "warn"
	}

	log := logger.New(cfg)
	hc := httputil.New(cfg, log)
	return ranker.NewClient(hc, cfg.APIBaseURL(), auth.NewStatic(cfg.Ranker.AccessToken), log), log, nil
}
