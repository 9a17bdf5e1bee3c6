package pool

import (
	"context"
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/feed"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
)

// Archiver receives each pool right after it has been persisted.
type Archiver interface {
	Archive(ctx context.Context, p *models.StoryPool) (string, error)
}

// PassResult summarises one population pass.
type PassResult struct {
	Fetched   int
	Discarded int
	Added     int
	Size      int
}

// Manager owns the global story pool: it is the only writer of both the
// persisted pool document and the in-memory Cache.
type Manager struct {
	gw         store.Gateway
	adapter    feed.Adapter
	cache      *Cache
	categories []string
	max        int
	archiver   Archiver
	log        logger.Entry
}

// NewManager builds a Manager fetching categories in the given order and
// capping the pool at max stories.
func NewManager(gw store.Gateway, adapter feed.Adapter, cache *Cache, categories []string, max int) *Manager {
	return &Manager{
		gw:         gw,
		adapter:    adapter,
		cache:      cache,
		categories: append([]string(nil), categories...),
		max:        max,
		log:        logger.With("pool"),
	}
}

// SetArchiver enables snapshot archiving; nil disables it.
func (m *Manager) SetArchiver(a Archiver) { m.archiver = a }

// Cache returns the cache the manager publishes into.
func (m *Manager) Cache() *Cache { return m.cache }

// EnsureLoaded returns the cached pool, reading it from the gateway on first use.
func (m *Manager) EnsureLoaded(ctx context.Context) (*models.StoryPool, error) {
	if p := m.cache.Load(); p != nil {
		return p, nil
	}
	p, err := m.gw.LoadPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("load global stories: %w", err)
	}
	m.log.Debugf("loaded %d global stories into cache", p.Len())
	return m.cache.LoadOrInit(p), nil
}

// Populate fetches every category in order, merges the new stories into the
// pool and persists it. The first category failure ends the pass and leaves
// both the cache and the stored pool untouched.
func (m *Manager) Populate(ctx context.Context) (PassResult, error) {
	var res PassResult

	current, err := m.EnsureLoaded(ctx)
	if err != nil {
		metrics.PopulationPasses.WithLabelValues("error").Inc()
		return res, err
	}

	var fresh []models.Story
	for _, category := range m.categories {
		articles, err := m.adapter.Fetch(ctx, category)
		if err != nil {
			metrics.FeedFetches.WithLabelValues(category, "error").Inc()
			metrics.PopulationPasses.WithLabelValues("fetch_error").Inc()
			return res, err
		}
		metrics.FeedFetches.WithLabelValues(category, "ok").Inc()
		res.Fetched += len(articles)
		for _, a := range articles {
			s, ok := ToStory(a)
			if !ok {
				res.Discarded++
				continue
			}
			fresh = append(fresh, s)
		}
	}
	if res.Discarded > 0 {
		metrics.ArticlesDiscarded.Add(float64(res.Discarded))
		m.log.Debugf("discarded %d malformed articles", res.Discarded)
	}

	merged, added := Merge(current.Stories, fresh, m.max)
	updated, err := m.gw.ReplacePoolStories(ctx, merged)
	if err != nil {
		metrics.PopulationPasses.WithLabelValues("persist_error").Inc()
		return res, fmt.Errorf("persist global stories: %w", err)
	}
	m.cache.Replace(updated)

	res.Added = added
	res.Size = updated.Len()
	metrics.StoriesIngested.Add(float64(added))
	metrics.PoolSize.Set(float64(res.Size))
	metrics.PopulationPasses.WithLabelValues("ok").Inc()
	m.log.Infof("population pass: fetched=%d discarded=%d added=%d pool=%d", res.Fetched, res.Discarded, res.Added, res.Size)

	if m.archiver != nil {
		if key, err := m.archiver.Archive(ctx, updated); err != nil {
			m.log.Warnf("archive global stories: %v", err)
		} else {
			m.log.Debugf("archived global stories to %s", key)
		}
	}
	return res, nil
}
