// Package media fetches clip audio. The full source video is downloaded once
// with yt-dlp into the cache, then each clip's [start, end) window is trimmed
// out with ffmpeg. Everything here is best effort; a clip whose video is gone
// just gets logged and skipped.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caretcaret/aurora/internal/cache"
	"github.com/caretcaret/aurora/internal/theorytab"
)

// Fetcher downloads and trims clip audio.
type Fetcher struct {
	cache    *cache.Store
	audioDir string
	ytdlp    string
	ffmpeg   string
	log      *slog.Logger
}

func NewFetcher(cacheStore *cache.Store, audioDir, ytdlpBin, ffmpegBin string, log *slog.Logger) *Fetcher {
	if ytdlpBin == "" {
		ytdlpBin = "yt-dlp"
	}
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Fetcher{
		cache:    cacheStore,
		audioDir: audioDir,
		ytdlp:    ytdlpBin,
		ffmpeg:   ffmpegBin,
		log:      log,
	}
}

// FetchClip ensures the clip's source audio is downloaded and writes the
// trimmed clip file. Returns the path to the trimmed audio.
func (f *Fetcher) FetchClip(ctx context.Context, clip theorytab.Clip) (string, error) {
	src, err := f.download(ctx, clip.Audio.VideoID)
	if err != nil {
		return "", err
	}
	return f.trim(ctx, src, clip)
}

// FetchAll trims every clip, logging and counting failures instead of
// stopping. Returns the number of clips successfully written.
func (f *Fetcher) FetchAll(ctx context.Context, clips []theorytab.Clip) int {
	written := 0
	for _, clip := range clips {
		if ctx.Err() != nil {
			return written
		}
		path, err := f.FetchClip(ctx, clip)
		if err != nil {
			f.log.Warn("audio fetch failed",
				"video_id", clip.Audio.VideoID, "source", clip.DataSource, "error", err)
			continue
		}
		f.log.Info("audio written", "path", path)
		written++
	}
	return written
}

// download fetches the source audio for a video into the cache, reusing any
// prior download. yt-dlp picks the container, so the cached file is located by
// key prefix rather than exact name.
func (f *Fetcher) download(ctx context.Context, videoID string) (string, error) {
	if path, ok := f.cache.Find("youtube/" + videoID); ok {
		return path, nil
	}

	outTemplate := f.cache.Path("youtube/" + videoID + ".%(ext)s")
	if err := os.MkdirAll(filepath.Dir(outTemplate), 0o755); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, f.ytdlp,
		"--quiet",
		"--extract-audio",
		"--output", outTemplate,
		"https://www.youtube.com/watch?v="+videoID,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp %s: %w: %s", videoID, err, strings.TrimSpace(stderr.String()))
	}

	path, ok := f.cache.Find("youtube/" + videoID)
	if !ok {
		return "", fmt.Errorf("yt-dlp %s: no output file", videoID)
	}
	return path, nil
}

// trim cuts the clip window out of the downloaded source.
func (f *Fetcher) trim(ctx context.Context, src string, clip theorytab.Clip) (string, error) {
	if err := os.MkdirAll(f.audioDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(f.audioDir, clipFilename(clip))

	// ffmpeg -y -ss start -to end -i src -vn out
	cmd := exec.CommandContext(ctx, f.ffmpeg,
		"-y",
		"-ss", formatSeconds(clip.Audio.StartTime),
		"-to", formatSeconds(clip.Audio.EndTime),
		"-i", src,
		"-vn",
		out,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// clipFilename names trimmed output by video and window so overlapping clips
// from different sections never collide.
func clipFilename(clip theorytab.Clip) string {
	return fmt.Sprintf("%s_%s_%s.mp3",
		clip.Audio.VideoID,
		formatSeconds(clip.Audio.StartTime),
		formatSeconds(clip.Audio.EndTime))
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
