package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caretcaret/aurora/internal/cache"
	"github.com/caretcaret/aurora/internal/crawler"
	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/hooktheory"
	"github.com/caretcaret/aurora/internal/store"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "crawl <characters>",
		Short: "Walk the theorytab listings for the given leading characters",
		Long: `Walk the artist listings whose names begin with the given characters,
normalize every section found, and save the clips into the database.
Fetched pages are cached, so interrupted runs resume cheaply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			characters := strings.ToLower(strings.TrimSpace(args[0]))
			if characters == "" {
				return fmt.Errorf("characters must be non-empty")
			}

			clips, err := store.Open(ctx.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer clips.Close()

			pageCache, err := cache.Open(ctx.cfg.CacheDir, ctx.cfg.Fresh)
			if err != nil {
				return err
			}
			defer pageCache.Close()

			client := hooktheory.NewClient(ctx.cfg.BaseURL, ctx.cfg.UserAgent, ctx.cfg.RequestTimeout)
			defer client.Close()

			if concurrency <= 0 {
				concurrency = ctx.cfg.FetchConcurrency
			}
			crawl := crawler.New(client, pageCache, clips, ctx.log, diag.Logger{Log: ctx.log}, concurrency)

			summary, err := crawl.Run(cmd.Context(), characters)
			fmt.Println(renderTable(
				[]string{"Artists", "Songs", "Sections", "Clips", "Failures"},
				[][]string{{
					fmt.Sprint(summary.Artists),
					fmt.Sprint(summary.Songs),
					fmt.Sprint(summary.Sections),
					fmt.Sprint(summary.Clips),
					fmt.Sprint(summary.Failures),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return err
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent artist fetches (default from FETCH_CONCURRENCY)")
	return cmd
}
