package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/theorytab"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Normalize theorytab documents and print the resulting clips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var clips []theorytab.Clip
			failed := 0
			sink := diag.Logger{Log: ctx.log}

			for _, path := range args {
				doc, err := theorytab.Open(path)
				if err != nil {
					ctx.log.Error("unreadable document", "path", path, "error", err)
					failed++
					continue
				}
				clips = append(clips, doc.Clips(sink)...)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(clips); err != nil {
					return err
				}
			} else {
				fmt.Println(clipTable(clips))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents could not be read", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit clips as JSON instead of a table")
	return cmd
}

func clipTable(clips []theorytab.Clip) string {
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		mode := theorytab.ModeName(c.Key.Mode)
		if mode == "" {
			mode = strconv.Itoa(c.Key.Mode)
		}
		rows = append(rows, []string{
			c.DataSource,
			c.Audio.VideoID,
			fmt.Sprintf("%.2f", c.Audio.StartTime),
			fmt.Sprintf("%.2f", c.Audio.EndTime),
			strconv.Itoa(c.Meter.Beats),
			strconv.Itoa(c.Meter.BeatsPerMeasure),
			strconv.Itoa(c.Key.Tonic),
			mode,
		})
	}
	return renderTable(
		[]string{"Source", "Video", "Start", "End", "Beats", "Per Measure", "Tonic", "Mode"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
