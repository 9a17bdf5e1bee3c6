package store

import (
	"context"
	"sync"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// MemoryGateway is an in-memory Gateway used by unit tests and local runs.
// Documents are copied on the way in and out, so callers never share
// slices with the stored state.
type MemoryGateway struct {
	mu    sync.RWMutex
	pool  *models.StoryPool
	subs  map[string]*models.Subscriber
	order []string

	// Errors injected per operation ("pool", "replace", "subscriber", "update", "cursor").
	errs map[string]error
	// Per-subscriber update failures.
	updateErrs map[string]error
	// Filter updates applied, in call order.
	updates []string
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		subs:       map[string]*models.Subscriber{},
		errs:       map[string]error{},
		updateErrs: map[string]error{},
	}
}

// PutPool stores the global story document.
func (m *MemoryGateway) PutPool(p *models.StoryPool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool = copyPool(p)
}

// PutSubscriber stores or replaces a subscriber record.
func (m *MemoryGateway) PutSubscriber(s *models.Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	m.subs[s.ID] = copySubscriber(s)
}

// DeleteSubscriber removes a subscriber record.
func (m *MemoryGateway) DeleteSubscriber(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

// FailOn makes every call of op return err; a nil err clears it.
func (m *MemoryGateway) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// FailUpdateFor makes UpdateFilters fail for one subscriber.
func (m *MemoryGateway) FailUpdateFor(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateErrs[id] = err
}

// Updates returns the subscriber IDs whose filters were written, in order.
func (m *MemoryGateway) Updates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.updates...)
}

// Pool returns a copy of the stored pool, or nil.
func (m *MemoryGateway) Pool() *models.StoryPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyPool(m.pool)
}

// Subscriber returns a copy of the stored subscriber, or nil.
func (m *MemoryGateway) Subscriber(id string) *models.Subscriber {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySubscriber(m.subs[id])
}

func (m *MemoryGateway) EnsurePool(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil {
		m.pool = &models.StoryPool{ID: "global", Type: models.GlobalStoryType, Stories: []models.Story{}}
	}
	return nil
}

func (m *MemoryGateway) LoadPool(ctx context.Context) (*models.StoryPool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["pool"]; err != nil {
		return nil, err
	}
	if m.pool == nil {
		return nil, ErrNotFound
	}
	return copyPool(m.pool), nil
}

func (m *MemoryGateway) ReplacePoolStories(ctx context.Context, stories []models.Story) (*models.StoryPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["replace"]; err != nil {
		return nil, err
	}
	if m.pool == nil {
		return nil, ErrNotFound
	}
	m.pool.Stories = append([]models.Story{}, stories...)
	return copyPool(m.pool), nil
}

func (m *MemoryGateway) LoadSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["subscriber"]; err != nil {
		return nil, err
	}
	s, ok := m.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySubscriber(s), nil
}

func (m *MemoryGateway) UpdateFilters(ctx context.Context, id string, filters []models.Filter) (*models.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["update"]; err != nil {
		return nil, err
	}
	if err := m.updateErrs[id]; err != nil {
		return nil, err
	}
	s, ok := m.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Filters = copyFilters(filters)
	m.updates = append(m.updates, id)
	return copySubscriber(s), nil
}

func (m *MemoryGateway) Subscribers(ctx context.Context) (SubscriberCursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["cursor"]; err != nil {
		return nil, err
	}
	return &memoryCursor{gw: m, ids: append([]string(nil), m.order...), pos: -1}, nil
}

// memoryCursor reads each record when it is reached, like a server-side cursor.
type memoryCursor struct {
	gw   *MemoryGateway
	ids  []string
	pos  int
	cur  *models.Subscriber
	done bool
}

func (c *memoryCursor) Next(ctx context.Context) bool {
	if c.done {
		return false
	}
	for {
		c.pos++
		if c.pos >= len(c.ids) {
			c.done = true
			return false
		}
		c.gw.mu.RLock()
		s, ok := c.gw.subs[c.ids[c.pos]]
		c.cur = copySubscriber(s)
		c.gw.mu.RUnlock()
		if ok {
			return true
		}
	}
}

func (c *memoryCursor) Decode(s *models.Subscriber) error {
	if c.cur == nil {
		return ErrNotFound
	}
	*s = *c.cur
	return nil
}

func (c *memoryCursor) Err() error { return nil }

func (c *memoryCursor) Close(ctx context.Context) error {
	c.done = true
	return nil
}

func copyPool(p *models.StoryPool) *models.StoryPool {
	if p == nil {
		return nil
	}
	out := *p
	out.Stories = append([]models.Story{}, p.Stories...)
	return &out
}

func copySubscriber(s *models.Subscriber) *models.Subscriber {
	if s == nil {
		return nil
	}
	out := *s
	out.Filters = copyFilters(s.Filters)
	return &out
}

func copyFilters(in []models.Filter) []models.Filter {
	out := make([]models.Filter, len(in))
	for i, f := range in {
		f.Keywords = append([]string(nil), f.Keywords...)
		f.NewsStories = append([]models.Story{}, f.NewsStories...)
		if f.Extra != nil {
			extra := make(map[string]interface{}, len(f.Extra))
			for k, v := range f.Extra {
				extra[k] = v
			}
			f.Extra = extra
		}
		out[i] = f
	}
	return out
}
