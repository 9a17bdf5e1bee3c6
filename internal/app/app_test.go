package app

import (
	"testing"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/config"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/feed"
	"github.com/stretchr/testify/require"
)

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(config.FeedConfig{Provider: "newsapi", BaseURL: "https://newsapi.org/v2", RPS: 1})
	require.NoError(t, err)
	require.IsType(t, &feed.NewsAPIClient{}, a)

	a, err = NewAdapter(config.FeedConfig{Provider: "rss", RSSFeeds: map[string]string{"general": "https://example.com/rss"}})
	require.NoError(t, err)
	require.IsType(t, &feed.RSSAdapter{}, a)

	_, err = NewAdapter(config.FeedConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
}
