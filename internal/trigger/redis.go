package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisSource receives trigger messages over a Redis pub/sub channel.
// Delivery is at-most-once: messages published while no worker is
// subscribed are lost.
type RedisSource struct {
	client  *redis.Client
	channel string
	log     logger.Entry
}

func NewRedisSource(client *redis.Client, channel string) *RedisSource {
	return &RedisSource{client: client, channel: channel, log: logger.With("trigger")}
}

func (s *RedisSource) Messages(ctx context.Context) (<-chan Message, error) {
	ps := s.client.Subscribe(ctx, s.channel)
	// wait for the subscription to be confirmed so nothing published after
	// Messages returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.log.Infof("subscribed to %s", s.channel)

	in := ps.Channel()
	out := make(chan Message)
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case rm, ok := <-in:
				if !ok {
					return
				}
				msg, err := Decode([]byte(rm.Payload))
				if err != nil {
					s.log.Warnf("dropping malformed message on %s: %v", rm.Channel, err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publisher enqueues refresh requests for the worker.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// PublishRefresh sends a REFRESH_STORIES message carrying sub and returns the
// number of subscribed workers that received it.
func (p *Publisher) PublishRefresh(ctx context.Context, sub *models.Subscriber) (int64, error) {
	b, err := json.Marshal(NewRefresh(sub))
	if err != nil {
		return 0, fmt.Errorf("encode trigger: %w", err)
	}
	n, err := p.client.Publish(ctx, p.channel, b).Result()
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return n, nil
}
