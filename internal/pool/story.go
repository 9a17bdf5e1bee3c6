package pool

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/feed"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

const (
	// SnippetLength caps a snippet taken from the article body.
	SnippetLength = 200
	// MaxURLLength is the longest image or link URL kept on a story.
	MaxURLLength = 500
	// PlaceholderSnippet is used when an article has neither description nor body.
	PlaceholderSnippet = "No summary available."
)

// StoryID derives the stable story identifier from the canonical URL.
func StoryID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

// ToStory maps a feed article to a story. ok is false when the article lacks a
// title, a parseable publish time or a URL; such articles are simply skipped.
func ToStory(a feed.Article) (s models.Story, ok bool) {
	title := strings.TrimSpace(a.Title)
	link := strings.TrimSpace(a.URL)
	if title == "" || link == "" || a.PublishedAt == "" {
		return models.Story{}, false
	}
	published, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return models.Story{}, false
	}

	s = models.Story{
		StoryID:        StoryID(link),
		Title:          title,
		ContentSnippet: snippet(a),
		Date:           published.UTC(),
		ImageURL:       a.URLToImage,
		Link:           link,
		Source:         a.Source.Name,
	}
	blankOversizedURL(&s)
	return s, true
}

func snippet(a feed.Article) string {
	if d := strings.TrimSpace(a.Description); d != "" {
		return d
	}
	if c := strings.TrimSpace(a.Content); c != "" {
		return truncate(c, SnippetLength)
	}
	return PlaceholderSnippet
}

// blankOversizedURL clears at most one over-long URL per story: the image URL
// is checked first and the link is only checked when the image URL passed.
func blankOversizedURL(s *models.Story) {
	if len(s.ImageURL) > MaxURLLength {
		s.ImageURL = ""
	} else if len(s.Link) > MaxURLLength {
		s.Link = ""
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
