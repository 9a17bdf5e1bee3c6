package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/feed"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/matcher"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/pool"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/stretchr/testify/require"
)

type staticAdapter []feed.Article

func (s staticAdapter) Fetch(ctx context.Context, category string) ([]feed.Article, error) {
	return s, nil
}

type recordingPublisher struct {
	subs      []*models.Subscriber
	listeners int64
}

func (p *recordingPublisher) PublishRefresh(ctx context.Context, sub *models.Subscriber) (int64, error) {
	p.subs = append(p.subs, sub)
	return p.listeners, nil
}

func newEnv(t *testing.T, pub Publisher) (*Env, *store.MemoryGateway) {
	t.Helper()
	gw := store.NewMemoryGateway()
	require.NoError(t, gw.EnsurePool(context.Background()))
	gw.PutSubscriber(&models.Subscriber{ID: "u1", Type: models.UserType, Filters: []models.Filter{
		{Name: "Phones", Keywords: []string{"phone"}},
	}})
	ad := staticAdapter{{
		Title:       "Apple unveils new phone",
		Description: "A new phone.",
		URL:         "https://example.com/phone",
		PublishedAt: "2026-10-14T06:00:00Z",
	}}
	return &Env{
		Gateway:   gw,
		Pools:     pool.NewManager(gw, ad, pool.NewCache(), []string{"technology"}, 100),
		Matcher:   matcher.New(gw, 15, nil),
		Publisher: pub,
	}, gw
}

func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	opened := false
	root := NewRootCommand(func(ctx context.Context) (*Env, error) {
		opened = true
		return env, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if args[0] == "version" {
		require.False(t, opened, "version must not open the environment")
	}
	return out.String(), err
}

func TestPopulate(t *testing.T) {
	env, gw := newEnv(t, nil)
	out, err := run(t, env, "populate")
	require.NoError(t, err)
	require.Contains(t, out, "added 1")
	require.Len(t, gw.Pool().Stories, 1)
	require.Empty(t, gw.Updates())
}

func TestPopulateWithRefresh(t *testing.T) {
	env, gw := newEnv(t, nil)
	_, err := run(t, env, "populate", "--refresh")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, gw.Updates())
	require.Len(t, gw.Subscriber("u1").Filters[0].NewsStories, 1)
}

func TestRefresh(t *testing.T) {
	env, gw := newEnv(t, nil)
	_, err := env.Pools.Populate(context.Background())
	require.NoError(t, err)

	out, err := run(t, env, "refresh", "u1")
	require.NoError(t, err)
	require.Contains(t, out, "Added 1 story(ies)")
	require.Len(t, gw.Subscriber("u1").Filters[0].NewsStories, 1)

	_, err = run(t, env, "refresh", "ghost")
	require.ErrorContains(t, err, "not found")

	_, err = run(t, env, "refresh")
	require.Error(t, err)
}

func TestTrigger(t *testing.T) {
	pub := &recordingPublisher{listeners: 2}
	env, _ := newEnv(t, pub)

	out, err := run(t, env, "trigger", "u1")
	require.NoError(t, err)
	require.Contains(t, out, "to 2 worker(s)")
	require.Len(t, pub.subs, 1)
	require.Equal(t, "Phones", pub.subs[0].Filters[0].Name)

	pub.listeners = 0
	out, err = run(t, env, "trigger", "u1")
	require.NoError(t, err)
	require.Contains(t, out, "no worker is listening")
}

func TestTriggerWithoutBroker(t *testing.T) {
	env, _ := newEnv(t, nil)
	_, err := run(t, env, "trigger", "u1")
	require.ErrorContains(t, err, "REDIS_HOST")
}

func TestOpenerError(t *testing.T) {
	root := NewRootCommand(func(ctx context.Context) (*Env, error) {
		return nil, errors.New("mongo down")
	})
	root.SetArgs([]string{"populate"})
	root.SetOut(&bytes.Buffer{})
	require.ErrorContains(t, root.ExecuteContext(context.Background()), "mongo down")
}

func TestVersion(t *testing.T) {
	out, err := run(t, &Env{}, "version")
	require.NoError(t, err)
	require.Contains(t, out, "newsctl dev")
}
