package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/caretcaret/aurora/internal/config"
)

// commandContext carries the shared configuration and logger into
// subcommands. Flags override environment configuration.
type commandContext struct {
	cfg config.Config
	log *slog.Logger

	verbose  bool
	quiet    bool
	dbPath   string
	cacheDir string
	fresh    bool
}

func (c *commandContext) setup(cmd *cobra.Command, args []string) error {
	c.cfg = config.Load()
	if c.dbPath != "" {
		c.cfg.DatabasePath = c.dbPath
	}
	if c.cacheDir != "" {
		c.cfg.CacheDir = c.cacheDir
	}
	if c.fresh {
		c.cfg.Fresh = true
	}

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.quiet {
		level = slog.LevelError
	}
	c.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:               "aurora",
		Short:             "Normalize theorytab transcriptions into a clip catalog",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: ctx.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().StringVar(&ctx.dbPath, "db", "", "Path to the clip database")
	rootCmd.PersistentFlags().StringVar(&ctx.cacheDir, "cache-dir", "", "Path to the page cache")
	rootCmd.PersistentFlags().BoolVar(&ctx.fresh, "fresh", false, "Ignore cached pages and refetch")

	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newCrawlCommand(ctx))
	rootCmd.AddCommand(newClipsCommand(ctx))
	rootCmd.AddCommand(newAudioCommand(ctx))

	return rootCmd
}
