package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/external/ranker"
)

var (
	domainsCmd = &cobra.Command{
		Use:   "domains",
		Short: "List ranking domains and manage custom domains",
		Long: `Ranking domains group stocks by theme.

Custom domains belong to the signed-in user and need an access token
(--token or RANKER_ACCESS_TOKEN).

Example:
  go run ./cmd/ranker domains list
  go run ./cmd/ranker domains custom list
  go run ./cmd/ranker domains custom create "My Picks" "aapl, msft , googl"
  go run ./cmd/ranker domains custom update 3 "nvda, amd"
  go run ./cmd/ranker domains custom delete 3`,
	}

	domainsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List ranking domains",
		RunE:  listDomains,
	}

	customCmd = &cobra.Command{
		Use:   "custom",
		Short: "Manage custom domains",
	}

	customListCmd = &cobra.Command{
		Use:   "list",
		Short: "List your custom domains",
		RunE:  listCustomDomains,
	}

	customCreateCmd = &cobra.Command{
		Use:   "create [name] [tickers]",
		Short: "Create a custom domain",
		Args:  cobra.ExactArgs(2),
		RunE:  createCustomDomain,
	}

	customUpdateCmd = &cobra.Command{
		Use:   "update [id] [tickers]",
		Short: "Replace a custom domain's tickers",
		Args:  cobra.ExactArgs(2),
		RunE:  updateCustomDomain,
	}

	customDeleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a custom domain",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteCustomDomain,
	}
)

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(domainsListCmd)
	domainsCmd.AddCommand(customCmd)
	customCmd.AddCommand(customListCmd)
	customCmd.AddCommand(customCreateCmd)
	customCmd.AddCommand(customUpdateCmd)
	customCmd.AddCommand(customDeleteCmd)
}

func listDomains(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	names, err := client.ListDomains(cmd.Context())
	if err != nil {
		return fmt.Errorf("list domains: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Domains:")
	for _, n := range names {
		fmt.Fprintf(out, "  - %s\n", n)
	}
	return nil
}

func listCustomDomains(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	domains, err := client.ListCustomDomains(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", ranker.UserMessage(err), err)
	}

	out := cmd.OutOrStdout()
	if len(domains) == 0 {
		PrintWarning(out, "No custom domains (or no access token)")
		return nil
	}

	widths := []int{4, 20, 40}
	PrintTableHeader(out, []string{"ID", "Name", "Tickers"}, widths)
	for _, d := range domains {
		PrintTableRow(out, []string{strconv.Itoa(d.ID), d.Name, strings.Join(d.Tickers, ", ")}, widths)
	}
	return nil
}

func createCustomDomain(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	created, err := client.CreateCustomDomain(cmd.Context(), args[0], ranker.ParseTickers(args[1]))
	if err != nil {
		PrintError(out, ranker.UserMessage(err))
		return err
	}
	if created == nil {
		PrintWarning(out, "Not signed in, nothing was created")
		return nil
	}

	PrintSuccess(out, fmt.Sprintf("Created #%d %s: %s", created.ID, created.Name, strings.Join(created.Tickers, ", ")))
	return nil
}

func updateCustomDomain(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	updated, err := client.UpdateCustomDomain(cmd.Context(), id, ranker.ParseTickers(args[1]))
	if err != nil {
		printWriteError(out, id, err)
		return err
	}
	if updated == nil {
		PrintWarning(out, "Not signed in, nothing was updated")
		return nil
	}

	PrintSuccess(out, fmt.Sprintf("Updated #%d %s: %s", updated.ID, updated.Name, strings.Join(updated.Tickers, ", ")))
	return nil
}

func deleteCustomDomain(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	client, _, err := newClient()
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	out := cmd.OutOrStdout()

	if err := client.DeleteCustomDomain(cmd.Context(), id); err != nil {
		printWriteError(out, id, err)
		return err
	}

	PrintSuccess(out, fmt.Sprintf("Deleted #%d", id))
	return nil
}

func printWriteError(out io.Writer, id int, err error) {
	if ranker.IsNotFound(err) {
		PrintError(out, fmt.Sprintf("Custom domain #%d not found", id))
		return
	}
	PrintError(out, ranker.UserMessage(err))
}
