package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSAdapter maps each category to an RSS/Atom feed URL.
type RSSAdapter struct {
	parser *gofeed.Parser
	feeds  map[string]string
}

func NewRSSAdapter(feeds map[string]string) *RSSAdapter {
	p := gofeed.NewParser()
	p.UserAgent = "newswatcher-worker/1.0"
	return &RSSAdapter{parser: p, feeds: feeds}
}

func (a *RSSAdapter) Fetch(ctx context.Context, category string) ([]Article, error) {
	u, ok := a.feeds[category]
	if !ok {
		return nil, &FetchError{Category: category, Err: fmt.Errorf("no feed configured")}
	}
	f, err := a.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, &FetchError{Category: category, Err: err}
	}

	out := make([]Article, 0, len(f.Items))
	for _, item := range f.Items {
		a := Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			Source:      SourceRef{Name: f.Title},
		}
		if item.Image != nil {
			a.URLToImage = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if enc != nil && strings.HasPrefix(enc.Type, "image/") {
					a.URLToImage = enc.URL
					break
				}
			}
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		case item.UpdatedParsed != nil:
			a.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}
		out = append(out, a)
	}
	return out, nil
}
