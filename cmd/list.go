package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takeshy/zimcatalog/internal/render"
)

var (
	listPattern     string
	listLong        bool
	listEnabledOnly bool
	listSource      catalogSource
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries as a table",
	Long: `List every group and archive in the catalog with its size, one row per
entry. Optionally filter by a regex pattern matched against the entry path
(e.g. "Library / Wikimedia / wikipedia").

Use --from to list a catalog saved by 'build' without fetching.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listPattern, "pattern", "P", "", "Regex pattern to filter entry paths")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Show URL and selected size")
	listCmd.Flags().BoolVarP(&listEnabledOnly, "enabled", "e", false, "Only list selected entries")
	listSource.register(listCmd)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	roots, err := listSource.roots(cmd)
	if err != nil {
		return err
	}

	entries := render.Flatten(roots)
	if listEnabledOnly {
		entries = render.FlattenEnabled(roots)
	}
	entries, err = render.FilterEntries(entries, listPattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found")
		return nil
	}

	if err := render.Table(out, entries, listLong); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d entries\n", len(entries))
	return nil
}
