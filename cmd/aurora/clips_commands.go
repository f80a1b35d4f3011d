package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caretcaret/aurora/internal/store"
	"github.com/caretcaret/aurora/internal/theorytab"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips",
		Short: "Inspect the clip catalog",
	}
	cmd.AddCommand(newClipsListCommand(ctx))
	cmd.AddCommand(newClipsStatsCommand(ctx))
	return cmd
}

func newClipsListCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clips, err := store.Open(ctx.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer clips.Close()

			list, err := clips.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			fmt.Println(clipTable(list))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum clips to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Clips to skip")
	return cmd
}

func newClipsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the clip catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clips, err := store.Open(ctx.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer clips.Close()

			stats, err := clips.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(renderTable(
				[]string{"Clips", "Videos", "Total Seconds"},
				[][]string{{
					strconv.Itoa(stats.Clips),
					strconv.Itoa(stats.Videos),
					fmt.Sprintf("%.1f", stats.TotalSeconds),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight},
			))

			if len(stats.ByMode) > 0 {
				modes := make([]int, 0, len(stats.ByMode))
				for m := range stats.ByMode {
					modes = append(modes, m)
				}
				sort.Ints(modes)

				rows := make([][]string, 0, len(modes))
				for _, m := range modes {
					name := theorytab.ModeName(m)
					if name == "" {
						name = strconv.Itoa(m)
					}
					rows = append(rows, []string{name, strconv.Itoa(stats.ByMode[m])})
				}
				fmt.Println(renderTable(
					[]string{"Mode", "Clips"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			return nil
		},
	}
}
