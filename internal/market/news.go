package market

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
)

// Headline is one freight-news item attached to sales notifications.
type Headline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsFeed pulls industry headlines from RSS feeds.
type NewsFeed struct {
	parser *gofeed.Parser
	urls   []string
	limit  int
}

// NewNewsFeed builds a reader over the given RSS URLs.
func NewNewsFeed(urls []string, limit int) *NewsFeed {
	if limit <= 0 {
		limit = 5
	}
	return &NewsFeed{parser: gofeed.NewParser(), urls: urls, limit: limit}
}

// Latest fetches headlines across all feeds, newest first. Individual
// feed failures are skipped; the caller gets whatever parsed.
func (n *NewsFeed) Latest(ctx context.Context) []Headline {
	var out []Headline
	for _, url := range n.urls {
		feed, err := n.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			continue
		}
		for _, item := range feed.Items {
			h := Headline{Title: item.Title, Link: item.Link}
			if item.PublishedParsed != nil {
				h.PublishedAt = *item.PublishedParsed
			}
			out = append(out, h)
		}
	}
	sortByRecency(out)
	if len(out) > n.limit {
		out = out[:n.limit]
	}
	return out
}

func sortByRecency(hs []Headline) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j].PublishedAt.After(hs[j-1].PublishedAt); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
}
