package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caretcaret/aurora/internal/cache"
	"github.com/caretcaret/aurora/internal/media"
	"github.com/caretcaret/aurora/internal/store"
)

func newAudioCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Fetch clip audio",
	}
	cmd.AddCommand(newAudioFetchCommand(ctx))
	return cmd
}

func newAudioFetchCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and trim audio for stored clips",
		Long: `Download each clip's source video audio with yt-dlp and trim the clip
window out with ffmpeg. Source downloads are cached per video, so clips
sharing a video only download it once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clips, err := store.Open(ctx.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer clips.Close()

			pageCache, err := cache.Open(ctx.cfg.CacheDir, false)
			if err != nil {
				return err
			}
			defer pageCache.Close()

			list, err := clips.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("no clips stored")
				return nil
			}

			fetcher := media.NewFetcher(pageCache, ctx.cfg.AudioDir, ctx.cfg.YtdlpBin, ctx.cfg.FfmpegBin, ctx.log)
			written := fetcher.FetchAll(cmd.Context(), list)
			fmt.Printf("wrote %d of %d clips to %s\n", written, len(list), ctx.cfg.AudioDir)
			if written == 0 {
				return fmt.Errorf("no clips could be fetched")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum clips to fetch")
	cmd.Flags().IntVar(&offset, "offset", 0, "Clips to skip")
	return cmd
}
