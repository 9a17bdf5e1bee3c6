package trigger

import (
	"context"
	"errors"
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// ErrNoSnapshot is returned for a refresh message without a subscriber.
var ErrNoSnapshot = errors.New("trigger message carries no subscriber snapshot")

// Resolver turns a refresh message into the subscriber record to match.
type Resolver interface {
	Resolve(ctx context.Context, m Message) (*models.Subscriber, error)
}

// SubscriberLoader is the gateway subset ReloadResolver needs.
type SubscriberLoader interface {
	LoadSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
}

// SnapshotResolver uses the snapshot carried by the message as-is.
type SnapshotResolver struct{}

func (SnapshotResolver) Resolve(ctx context.Context, m Message) (*models.Subscriber, error) {
	if m.Subscriber == nil || m.Subscriber.ID == "" {
		return nil, ErrNoSnapshot
	}
	return m.Subscriber, nil
}

// ReloadResolver re-reads the subscriber by ID when the message is handled,
// so filters edited after the message was sent are not overwritten.
type ReloadResolver struct {
	Loader SubscriberLoader
}

func (r ReloadResolver) Resolve(ctx context.Context, m Message) (*models.Subscriber, error) {
	if m.Subscriber == nil || m.Subscriber.ID == "" {
		return nil, ErrNoSnapshot
	}
	sub, err := r.Loader.LoadSubscriber(ctx, m.Subscriber.ID)
	if err != nil {
		return nil, fmt.Errorf("reload subscriber %s: %w", m.Subscriber.ID, err)
	}
	return sub, nil
}

// ResolverByName resolves the REFRESH_STRATEGY setting.
func ResolverByName(name string, loader SubscriberLoader) (Resolver, error) {
	switch name {
	case "", "snapshot":
		return SnapshotResolver{}, nil
	case "reload":
		return ReloadResolver{Loader: loader}, nil
	}
	return nil, fmt.Errorf("unknown refresh strategy %q", name)
}
