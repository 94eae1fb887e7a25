package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takeshy/zimcatalog/internal/render"
)

var (
	treeEnabledOnly bool
	treeShowURL     bool
	treeSource      catalogSource
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Render the catalog as a tree",
	Long: `Render the catalog roots as trees. Selected items are marked [x];
single-choice groups are tagged "(one of)" and rsync mirrors that cannot be
downloaded on this host are tagged "(unavailable)".

Examples:
  zimcatalog tree
  zimcatalog tree --from catalog.jsonl --enabled --urls`,
	RunE: runTree,
}

func init() {
	treeCmd.Flags().BoolVarP(&treeEnabledOnly, "enabled", "e", false, "Hide deselected items")
	treeCmd.Flags().BoolVar(&treeShowURL, "urls", false, "Show download URLs")
	treeSource.register(treeCmd)
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	roots, err := treeSource.roots(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Tree(roots, render.Options{
		EnabledOnly: treeEnabledOnly,
		ShowURL:     treeShowURL,
	}))
	return nil
}
