package hooktheory

import (
	"bytes"
	"regexp"

	"golang.org/x/net/html"
)

// Listing pages are scraped by href shape rather than page structure, which
// has survived several site redesigns.
var (
	artistHrefPattern  = regexp.MustCompile(`^/theorytab/artists/[a-z0-9\-]/(.+)`)
	songHrefPattern    = regexp.MustCompile(`^/theorytab/view/[a-z0-9\-]+/(.+)`)
	sectionHrefPattern = regexp.MustCompile(`/theorytab/fork/id/([0-9]+)`)
)

// ArtistLinks extracts artist ids from an artist index page. The raw match
// count (before dedup) is returned so callers can decide whether another page
// exists: full pages carry at least 100 links.
func ArtistLinks(page []byte) (ids []string, matches int) {
	return extractLinks(page, artistHrefPattern)
}

// SongLinks extracts song ids from an artist's song listing page.
func SongLinks(page []byte) (ids []string, matches int) {
	return extractLinks(page, songHrefPattern)
}

// SectionLinks extracts section primary keys from a song page.
func SectionLinks(page []byte) (ids []string, matches int) {
	return extractLinks(page, sectionHrefPattern)
}

func extractLinks(page []byte, pattern *regexp.Regexp) (ids []string, matches int) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, 0
	}

	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); href != "" {
				if m := pattern.FindStringSubmatch(href); m != nil {
					matches++
					id := m[1]
					if !seen[id] {
						seen[id] = true
						ids = append(ids, id)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ids, matches
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
