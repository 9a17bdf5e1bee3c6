package store

import (
	"context"
	"errors"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

var (
	// ErrNotFound is returned when the target pool or subscriber document does not exist.
	ErrNotFound = errors.New("document not found")
)

// Gateway is the persistence boundary used by the pool manager, matcher and worker.
// Calls are single attempts; callers own any retry policy.
type Gateway interface {
	// LoadPool returns the global story document.
	LoadPool(ctx context.Context) (*models.StoryPool, error)
	// ReplacePoolStories overwrites the pool's story list and returns the updated document.
	ReplacePoolStories(ctx context.Context, stories []models.Story) (*models.StoryPool, error)
	// LoadSubscriber returns one subscriber record.
	LoadSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
	// UpdateFilters replaces only the subscriber's filters and returns the updated document.
	UpdateFilters(ctx context.Context, id string, filters []models.Filter) (*models.Subscriber, error)
	// Subscribers opens a forward-only cursor over every subscriber record.
	// Calling it again starts a fresh pass.
	Subscribers(ctx context.Context) (SubscriberCursor, error)
}

// SubscriberCursor iterates subscriber records lazily, one at a time.
type SubscriberCursor interface {
	Next(ctx context.Context) bool
	Decode(s *models.Subscriber) error
	Err() error
	Close(ctx context.Context) error
}
