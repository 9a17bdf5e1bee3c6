package trigger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
)

// CommandRefreshStories asks the worker to refresh one subscriber's filters.
const CommandRefreshStories = "REFRESH_STORIES"

// Message is one inbound request. It carries a full subscriber snapshot as
// taken by the sender, which may be stale by the time it is handled.
type Message struct {
	Command    string             `json:"command"`
	Subscriber *models.Subscriber `json:"subscriberSnapshot,omitempty"`
}

// NewRefresh builds a REFRESH_STORIES message for sub.
func NewRefresh(sub *models.Subscriber) Message {
	return Message{Command: CommandRefreshStories, Subscriber: sub}
}

// Decode parses a wire payload. A payload without a command is malformed.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("decode trigger: %w", err)
	}
	if m.Command == "" {
		return Message{}, fmt.Errorf("decode trigger: missing command")
	}
	return m, nil
}

// Source delivers inbound messages. The returned channel is closed when ctx
// is done or the source shuts down.
type Source interface {
	Messages(ctx context.Context) (<-chan Message, error)
}

// ChanSource is an in-process Source.
type ChanSource struct {
	ch chan Message
}

func NewChanSource(buffer int) *ChanSource {
	return &ChanSource{ch: make(chan Message, buffer)}
}

// Send enqueues a message, blocking while the buffer is full.
func (s *ChanSource) Send(m Message) { s.ch <- m }

// Close ends the stream.
func (s *ChanSource) Close() { close(s.ch) }

func (s *ChanSource) Messages(ctx context.Context) (<-chan Message, error) {
	return s.ch, nil
}
