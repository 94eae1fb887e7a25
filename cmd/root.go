package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/takeshy/zimcatalog/internal/catalog"
	"github.com/takeshy/zimcatalog/internal/config"
	"github.com/takeshy/zimcatalog/internal/logging"
	"github.com/takeshy/zimcatalog/internal/source"
	"github.com/takeshy/zimcatalog/internal/store"
	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

var (
	Version = "dev"

	cfgFile     string
	urls        []string
	logLevel    string
	logFormat   string
	verbose     bool
	syncClient  string
	noSync      bool
	parallelism int
	timeout     time.Duration
	retries     int

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     "zimcatalog",
	Short:   "Kiwix content catalog builder",
	Version: Version,
	Long: `zimcatalog fetches the Kiwix content listing, classifies every offline
archive into a browsable catalog tree and reports download sizes.

The catalog has two roots: Library, holding encyclopedias, Q&A sites, vendor
documentation and media collections, and Linux, holding distribution wikis
grouped by family. Within a single-choice group only the largest variant is
selected; rsync mirrors are only selectable when an rsync client is available.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, cfg.Verbose)
		if err != nil {
			return err
		}
		logger.Debug("loaded config",
			zap.Strings("urls", cfg.URLs),
			zap.Int("parallelism", cfg.Parallelism),
			zap.Duration("timeout", cfg.Timeout),
			zap.Int("retries", cfg.Retries))

		caps := cfg.Capabilities()
		logger.Debug("detected capabilities",
			zap.String("platform", caps.Platform),
			zap.Bool("sync", caps.SyncSupported()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (default: <user config dir>/zimcatalog/zimcatalog.yaml)")
	flags.StringSliceVarP(&urls, "url", "u", []string{source.DefaultURL}, "Content page URL (repeatable, or ZIMCATALOG_URLS)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", logging.FormatJSON, "Log format: json or console")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&syncClient, "sync-client", catalog.DefaultSyncClient, "Executable that enables rsync downloads")
	flags.BoolVar(&noSync, "no-sync", false, "Treat rsync downloads as unavailable")
	flags.IntVarP(&parallelism, "parallelism", "p", source.DefaultParallelism, "Number of pages fetched in parallel")
	flags.DurationVar(&timeout, "timeout", source.DefaultTimeout, "Per-request timeout")
	flags.IntVar(&retries, "retries", source.DefaultRetries, "Retries for failed page requests")
}

// newSource builds the page source from the loaded config
func newSource() *source.Source {
	client := source.NewClient(
		source.WithTimeout(cfg.Timeout),
		source.WithRetries(cfg.Retries, 0, 0),
		source.WithClientLogger(logger.Named("client")),
	)
	return source.New(client, cfg.Parallelism, logger.Named("source"))
}

// newClassifier builds a classifier bound to this host's capabilities
func newClassifier() *taxonomy.Classifier {
	return taxonomy.New(cfg.Capabilities(), taxonomy.WithLogger(logger.Named("taxonomy")))
}

// catalogSource selects where a command reads its catalog from
type catalogSource struct {
	input string // saved content page
	from  string // saved catalog
}

func (c *catalogSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.input, "input", "i", "", "Read a saved content page instead of fetching")
	cmd.Flags().StringVar(&c.from, "from", "", "Read a catalog written by 'build' (.jsonl or .yaml)")
	cmd.MarkFlagsMutuallyExclusive("input", "from")
}

// roots loads the catalog roots, fetching pages only when no file is given
func (c *catalogSource) roots(cmd *cobra.Command) ([]*catalog.Group, error) {
	if c.from != "" {
		roots, err := store.Load(c.from, cfg.Capabilities())
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded catalog", zap.String("path", c.from), zap.Int("roots", len(roots)))
		return roots, nil
	}

	records, err := c.records(cmd)
	if err != nil {
		return nil, err
	}
	return newClassifier().Classify(records), nil
}

func (c *catalogSource) records(cmd *cobra.Command) ([]taxonomy.Record, error) {
	src := newSource()
	if c.input != "" {
		return src.RecordsFromFile(c.input)
	}
	return src.Records(cmd.Context(), cfg.URLs)
}
