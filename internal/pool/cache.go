package pool

import (
	"sync/atomic"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// Cache holds the current global story pool for the worker process.
// The pool is replaced wholesale and never modified in place, so readers
// always see a complete old or new pool without any locking.
type Cache struct {
	p atomic.Pointer[models.StoryPool]
}

func NewCache() *Cache { return &Cache{} }

// Load returns the cached pool, or nil before the first load.
// The returned value must be treated as read-only.
func (c *Cache) Load() *models.StoryPool { return c.p.Load() }

// Replace swaps in a new pool.
func (c *Cache) Replace(p *models.StoryPool) { c.p.Store(p) }

// LoadOrInit installs p only if the cache is still empty and returns the pool
// that ends up cached. A lazy load racing a population pass never overwrites
// the fresher pool.
func (c *Cache) LoadOrInit(p *models.StoryPool) *models.StoryPool {
	if c.p.CompareAndSwap(nil, p) {
		return p
	}
	return c.p.Load()
}

// Empty reports whether nothing has been loaded yet.
func (c *Cache) Empty() bool { return c.p.Load() == nil }
