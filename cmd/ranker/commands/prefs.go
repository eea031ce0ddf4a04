package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	prefsCmd = &cobra.Command{
		Use:   "prefs",
		Short: "Show or set your saved domain preference",
		Long: `The first saved domain is the one the dashboard opens on.

Example:
  go run ./cmd/ranker prefs get
  go run ./cmd/ranker prefs set "Clean Energy"`,
	}

	prefsGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show saved domains",
		RunE:  getPrefs,
	}

	prefsSetCmd = &cobra.Command{
		Use:   "set [domain...]",
		Short: "Replace saved domains",
		Args:  cobra.MinimumNArgs(1),
		RunE:  setPrefs,
	}
)

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}

func getPrefs(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	prefs, err := client.GetPreferences(cmd.Context())
	if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}

	switch {
	case prefs == nil:
		PrintWarning(out, "Not signed in")
	case len(prefs) == 0:
		fmt.Fprintln(out, "No saved domains")
	default:
		fmt.Fprintf(out, "Saved domains: %s\n", strings.Join(prefs, ", "))
	}
	return nil
}

func setPrefs(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	if err := client.PutPreferences(cmd.Context(), args); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), "Saved "+strings.Join(args, ", "))
	return nil
}
