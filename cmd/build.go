package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/takeshy/zimcatalog/internal/render"
	"github.com/takeshy/zimcatalog/internal/store"
)

var (
	buildFormat string
	buildOutput string
	buildSource catalogSource
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the catalog and write it as JSON lines or YAML",
	Long: `Fetch the content listing, classify every archive and write the two
catalog roots (Library, then Linux).

The default jsonl format writes one JSON object per root, one per line. The
yaml format writes one document per root. With --output the catalog is written
atomically and its checksum is printed.

Examples:
  # Print the catalog
  zimcatalog build

  # Build from a saved page and save as YAML
  zimcatalog build --input Content.html --format yaml --output catalog.yaml`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", string(store.FormatJSONL), "Output format: jsonl or yaml")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Write to file instead of stdout")
	buildSource.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	format, err := store.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	// an output extension decides unless --format was given
	if buildOutput != "" && !cmd.Flags().Changed("format") {
		if f, err := store.FormatFromPath(buildOutput); err == nil {
			format = f
		}
	}

	roots, err := buildSource.roots(cmd)
	if err != nil {
		return err
	}

	if buildOutput == "" {
		return store.Write(cmd.OutOrStdout(), roots, format)
	}

	checksum, err := store.Save(buildOutput, roots, format)
	if err != nil {
		return err
	}

	var total, selected uint64
	for _, root := range roots {
		total += root.Size(false)
		selected += root.Size(true)
	}
	logger.Info("saved catalog",
		zap.String("path", buildOutput),
		zap.String("format", string(format)),
		zap.String("checksum", checksum))

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s selected of %s)\n  %s\n",
		buildOutput, render.FormatSize(selected), render.FormatSize(total), checksum)
	return nil
}
