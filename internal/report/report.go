// Package report renders a human-readable summary of the clip catalog.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/caretcaret/aurora/internal/crawler"
	"github.com/caretcaret/aurora/internal/store"
	"github.com/caretcaret/aurora/internal/theorytab"
)

// Markdown builds the catalog summary as markdown.
func Markdown(stats store.Stats, crawl crawler.Summary) string {
	var b strings.Builder

	b.WriteString("# Clip Catalog\n\n")
	fmt.Fprintf(&b, "- Clips: %d\n", stats.Clips)
	fmt.Fprintf(&b, "- Distinct videos: %d\n", stats.Videos)
	fmt.Fprintf(&b, "- Total audio: %.1f seconds\n", stats.TotalSeconds)

	if len(stats.ByMode) > 0 {
		b.WriteString("\n## Clips by mode\n\n")
		modes := make([]int, 0, len(stats.ByMode))
		for m := range stats.ByMode {
			modes = append(modes, m)
		}
		sort.Ints(modes)
		for _, m := range modes {
			name := theorytab.ModeName(m)
			if name == "" {
				name = fmt.Sprintf("mode %d", m)
			}
			fmt.Fprintf(&b, "- %s: %d\n", name, stats.ByMode[m])
		}
	}

	if crawl != (crawler.Summary{}) {
		b.WriteString("\n## Crawl\n\n")
		fmt.Fprintf(&b, "- Artists visited: %d\n", crawl.Artists)
		fmt.Fprintf(&b, "- Songs visited: %d\n", crawl.Songs)
		fmt.Fprintf(&b, "- Sections fetched: %d\n", crawl.Sections)
		fmt.Fprintf(&b, "- Clips saved: %d\n", crawl.Clips)
		fmt.Fprintf(&b, "- Failures: %d\n", crawl.Failures)
	}

	return b.String()
}

// HTML renders the markdown summary to HTML.
func HTML(stats store.Stats, crawl crawler.Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(stats, crawl)), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
