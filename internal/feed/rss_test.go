package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example World</title>
  <link>https://example.com</link>
  <description>World news</description>
  <item>
    <title>Summit ends with agreement</title>
    <link>https://example.com/summit</link>
    <description>Leaders agreed on a plan.</description>
    <pubDate>Wed, 14 Oct 2026 06:00:00 +0000</pubDate>
    <enclosure url="https://example.com/summit.jpg" type="image/jpeg" length="100"/>
  </item>
  <item>
    <title>Undated item</title>
    <link>https://example.com/undated</link>
  </item>
</channel>
</rss>`

func TestRSSAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	a := NewRSSAdapter(map[string]string{"world": srv.URL})
	articles, err := a.Fetch(context.Background(), "world")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	require.Equal(t, "Summit ends with agreement", first.Title)
	require.Equal(t, "https://example.com/summit", first.URL)
	require.Equal(t, "Leaders agreed on a plan.", first.Description)
	require.Equal(t, "https://example.com/summit.jpg", first.URLToImage)
	require.Equal(t, "2026-10-14T06:00:00Z", first.PublishedAt)
	require.Equal(t, "Example World", first.Source.Name)

	require.Empty(t, articles[1].PublishedAt)
}

func TestRSSAdapter_Failures(t *testing.T) {
	a := NewRSSAdapter(map[string]string{})
	_, err := a.Fetch(context.Background(), "sports")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "sports", fe.Category)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err = NewRSSAdapter(map[string]string{"world": srv.URL}).Fetch(context.Background(), "world")
	require.ErrorAs(t, err, &fe)
}
