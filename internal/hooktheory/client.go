// Package hooktheory talks to the hooktheory.com theorytab endpoints: paginated
// artist and song listings, per-song section listings, and the raw section XML
// documents the parser consumes.
package hooktheory

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

const maxRetries = 3

// Client fetches listing pages and section documents.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ArtistListPage fetches one page of the artist index for a leading character
// (a-z or 0-9). Pages are 1-indexed.
func (c *Client) ArtistListPage(ctx context.Context, character string, page int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/theorytab/artists/%s?page=%d", c.baseURL, url.PathEscape(character), page))
}

// SongListPage fetches one page of an artist's song listing.
func (c *Client) SongListPage(ctx context.Context, artistID string, page int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/theorytab/artists/a/%s?page=%d", c.baseURL, url.PathEscape(artistID), page))
}

// SectionListPage fetches the song page listing its transcribed sections.
func (c *Client) SectionListPage(ctx context.Context, artistID, songID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/theorytab/view/%s/%s", c.baseURL, url.PathEscape(artistID), url.PathEscape(songID)))
}

// SectionXML fetches the raw theorytab document for a section primary key.
func (c *Client) SectionXML(ctx context.Context, sectionID string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/songs/getXmlByPk?pk=%s", c.baseURL, url.QueryEscape(sectionID)))
}

// get performs a GET with retries on transient failures (network errors and
// 5xx responses). 4xx responses fail immediately.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for attempt := range maxRetries {
		data, retryable, err := c.getOnce(ctx, u)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, u string) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("get %s: status %d: %s", u, resp.StatusCode, string(body))
		return nil, resp.StatusCode >= 500, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", u, err)
	}
	return body, false, nil
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
