package feed

import (
	"context"
	"fmt"
)

// Article is a candidate story as delivered by a news source, before validation.
// PublishedAt is kept raw (RFC 3339) so that articles with a bad timestamp can be
// discarded individually instead of failing the whole batch.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt string    `json:"publishedAt"`
	Source      SourceRef `json:"source"`
}

type SourceRef struct {
	Name string `json:"name"`
}

// Adapter fetches one category's batch of articles.
type Adapter interface {
	Fetch(ctx context.Context, category string) ([]Article, error)
}

// FetchError reports a category-level failure: transport error, bad status or bad payload.
type FetchError struct {
	Category string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch category %q: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
