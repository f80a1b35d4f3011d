// Package crawler walks the hooktheory theorytab listings (artists by leading
// character, songs per artist, sections per song) and feeds every section
// document through the normalizer into the clip catalog. Raw responses are
// cached so reruns cost nothing upstream.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/caretcaret/aurora/internal/cache"
	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/hooktheory"
	"github.com/caretcaret/aurora/internal/store"
	"github.com/caretcaret/aurora/internal/theorytab"
)

// fullPageLinks is the listing page size; a page with this many links means
// another page may follow.
const fullPageLinks = 100

// Crawler drives the listing walk. One bad artist, song, or section never
// stops the run; failures are counted and logged.
type Crawler struct {
	client      *hooktheory.Client
	cache       *cache.Store
	clips       *store.Store
	log         *slog.Logger
	sink        diag.Sink
	concurrency int

	artists  atomic.Int64
	songs    atomic.Int64
	sections atomic.Int64
	saved    atomic.Int64
	failures atomic.Int64
}

// Summary is a point-in-time view of crawl progress.
type Summary struct {
	Artists  int `json:"artists"`
	Songs    int `json:"songs"`
	Sections int `json:"sections"`
	Clips    int `json:"clips"`
	Failures int `json:"failures"`
}

func New(client *hooktheory.Client, cacheStore *cache.Store, clips *store.Store, log *slog.Logger, sink diag.Sink, concurrency int) *Crawler {
	if concurrency <= 0 {
		concurrency = 8
	}
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Crawler{
		client:      client,
		cache:       cacheStore,
		clips:       clips,
		log:         log,
		sink:        sink,
		concurrency: concurrency,
	}
}

// Summary returns current counters; safe to call while a run is in flight.
func (c *Crawler) Summary() Summary {
	return Summary{
		Artists:  int(c.artists.Load()),
		Songs:    int(c.songs.Load()),
		Sections: int(c.sections.Load()),
		Clips:    int(c.saved.Load()),
		Failures: int(c.failures.Load()),
	}
}

// Run explores artists by each leading character in characters (typically
// a-z plus 0-9), fanning out per artist with bounded concurrency. The only
// error Run itself returns is context cancellation; everything else is
// absorbed into the failure count.
func (c *Crawler) Run(ctx context.Context, characters string) (Summary, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, r := range characters {
		character := string(r)
		artistIDs, err := c.artistIDs(gctx, character)
		if err != nil {
			if ctx.Err() != nil {
				return c.Summary(), ctx.Err()
			}
			c.failures.Add(1)
			c.log.Error("artist listing failed", "character", character, "error", err)
			continue
		}
		for _, artistID := range artistIDs {
			g.Go(func() error {
				c.crawlArtist(gctx, artistID)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return c.Summary(), err
	}
	return c.Summary(), ctx.Err()
}

// artistIDs pages through one character's artist index.
func (c *Crawler) artistIDs(ctx context.Context, character string) ([]string, error) {
	var ids []string
	for page := 1; ; page++ {
		key := fmt.Sprintf("character/%s-%d.html", character, page)
		body, err := c.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
			return c.client.ArtistListPage(ctx, character, page)
		})
		if err != nil {
			return nil, err
		}
		pageIDs, matches := hooktheory.ArtistLinks(body)
		ids = append(ids, pageIDs...)
		if matches < fullPageLinks {
			break
		}
	}
	c.artists.Add(int64(len(ids)))
	return ids, nil
}

func (c *Crawler) crawlArtist(ctx context.Context, artistID string) {
	for page := 1; ; page++ {
		key := fmt.Sprintf("artist/%s-%d.html", artistID, page)
		body, err := c.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
			return c.client.SongListPage(ctx, artistID, page)
		})
		if err != nil {
			c.failures.Add(1)
			c.log.Error("song listing failed", "artist", artistID, "error", err)
			return
		}

		songIDs, matches := hooktheory.SongLinks(body)
		c.songs.Add(int64(len(songIDs)))
		for _, songID := range songIDs {
			c.crawlSong(ctx, artistID, songID)
			if ctx.Err() != nil {
				return
			}
		}
		if matches < fullPageLinks {
			return
		}
	}
}

func (c *Crawler) crawlSong(ctx context.Context, artistID, songID string) {
	key := fmt.Sprintf("song/%s-%s.html", artistID, songID)
	body, err := c.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return c.client.SectionListPage(ctx, artistID, songID)
	})
	if err != nil {
		c.failures.Add(1)
		c.log.Error("section listing failed", "artist", artistID, "song", songID, "error", err)
		return
	}

	sectionIDs, _ := hooktheory.SectionLinks(body)
	c.sections.Add(int64(len(sectionIDs)))
	for _, sectionID := range sectionIDs {
		if err := c.processSection(ctx, sectionID); err != nil {
			c.failures.Add(1)
			c.log.Error("section processing failed", "section", sectionID, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// processSection fetches one section document, normalizes it, and persists
// whatever clips survive. A document that yields zero clips is not an error
// here; its diagnostics already went to the sink.
func (c *Crawler) processSection(ctx context.Context, sectionID string) error {
	key := fmt.Sprintf("section/%s.xml", sectionID)
	body, err := c.fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return c.client.SectionXML(ctx, sectionID)
	})
	if err != nil {
		return err
	}

	doc, err := theorytab.ParseDocument(bytes.NewReader(body), key)
	if err != nil {
		return err
	}
	clips := doc.Clips(c.sink)
	if len(clips) == 0 {
		return nil
	}

	n, err := c.clips.SaveClips(ctx, clips)
	if err != nil {
		return fmt.Errorf("save clips: %w", err)
	}
	c.saved.Add(int64(n))
	return nil
}

// fetch serves key from the cache when possible, otherwise fetches and caches.
func (c *Crawler) fetch(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.cache.Get(key); ok {
		c.log.Debug("cache hit", "key", key)
		return data, nil
	}
	data, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, data); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	c.log.Info("fetched", "key", key)
	return data, nil
}
