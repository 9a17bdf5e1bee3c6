package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newswatcher/newswatcher/backend/news-worker/internal/matcher"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/models"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/pool"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/store"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/trigger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
)

// Options wires a Worker. Triggers may be nil to run scheduled passes only.
type Options struct {
	Pools           *pool.Manager
	Matcher         *matcher.Matcher
	Gateway         store.Gateway
	Ticks           <-chan time.Time
	Triggers        trigger.Source
	Resolver        trigger.Resolver
	PopulateOnStart bool
}

// Worker runs scheduled population passes and on-demand subscriber refreshes.
//
// The two kinds of work are not serialised against each other. They share
// only the pool cache (swapped atomically) and the gateway (atomic per call),
// so a subscriber written by both at once ends up with whichever write lands
// last.
type Worker struct {
	pools           *pool.Manager
	matcher         *matcher.Matcher
	gw              store.Gateway
	ticks           <-chan time.Time
	triggers        trigger.Source
	resolver        trigger.Resolver
	populateOnStart bool
	log             logger.Entry

	wg            sync.WaitGroup
	passing       atomic.Bool
	populating    atomic.Int32
	refreshingAll atomic.Int32
	refreshingOne atomic.Int32
	lastPopulated atomic.Int64
}

// State is a point-in-time view of the work in flight.
type State struct {
	Populating    int       `json:"populating"`
	RefreshingAll int       `json:"refreshingAll"`
	RefreshingOne int       `json:"refreshingOne"`
	LastPopulated time.Time `json:"lastPopulated,omitempty"`
}

// Idle reports whether nothing is running.
func (s State) Idle() bool {
	return s.Populating == 0 && s.RefreshingAll == 0 && s.RefreshingOne == 0
}

// RefreshSummary counts the outcome of one all-subscriber pass.
type RefreshSummary struct {
	Processed int
	Failed    int
}

func New(o Options) *Worker {
	r := o.Resolver
	if r == nil {
		r = trigger.SnapshotResolver{}
	}
	return &Worker{
		pools:           o.Pools,
		matcher:         o.Matcher,
		gw:              o.Gateway,
		ticks:           o.Ticks,
		triggers:        o.Triggers,
		resolver:        r,
		populateOnStart: o.PopulateOnStart,
		log:             logger.With("worker"),
	}
}

// State returns the current state counters.
func (w *Worker) State() State {
	s := State{
		Populating:    int(w.populating.Load()),
		RefreshingAll: int(w.refreshingAll.Load()),
		RefreshingOne: int(w.refreshingOne.Load()),
	}
	if ns := w.lastPopulated.Load(); ns > 0 {
		s.LastPopulated = time.Unix(0, ns).UTC()
	}
	return s
}

// Run is the dispatch loop. Each tick and each trigger message is handled in
// its own goroutine so the loop never waits on I/O. Run returns after ctx is
// cancelled and all in-flight work has returned.
func (w *Worker) Run(ctx context.Context) error {
	var msgs <-chan trigger.Message
	if w.triggers != nil {
		var err error
		if msgs, err = w.triggers.Messages(ctx); err != nil {
			return fmt.Errorf("open trigger channel: %w", err)
		}
	}
	defer w.wg.Wait()

	if w.populateOnStart {
		w.startPass(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Infof("shutting down, waiting for in-flight work")
			return nil
		case <-w.ticks:
			w.startPass(ctx)
		case msg, ok := <-msgs:
			if !ok {
				w.log.Warnf("trigger channel closed; on-demand refreshes disabled")
				msgs = nil
				continue
			}
			w.Dispatch(ctx, msg)
		}
	}
}

// startPass runs a scheduled pass unless one is still running. Two passes
// merging from the same cached pool would drop each other's new stories.
func (w *Worker) startPass(ctx context.Context) {
	if !w.passing.CompareAndSwap(false, true) {
		w.log.Warnf("previous scheduled pass still running, skipping tick")
		return
	}
	w.spawn(func() {
		defer w.passing.Store(false)
		_ = w.ScheduledPass(ctx)
	})
}

func (w *Worker) spawn(fn func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

// Dispatch routes one trigger message. Unknown commands are logged and ignored.
func (w *Worker) Dispatch(ctx context.Context, msg trigger.Message) {
	switch msg.Command {
	case trigger.CommandRefreshStories:
		metrics.TriggersReceived.WithLabelValues(msg.Command).Inc()
		w.spawn(func() { _ = w.RefreshOne(ctx, msg) })
	default:
		metrics.TriggersReceived.WithLabelValues("unknown").Inc()
		w.log.Warnf("ignoring unknown command %q", msg.Command)
	}
}

// ScheduledPass populates the pool and, only if that succeeded, refreshes
// every subscriber.
func (w *Worker) ScheduledPass(ctx context.Context) error {
	w.populating.Add(1)
	_, err := w.pools.Populate(ctx)
	w.populating.Add(-1)
	if err != nil {
		w.log.Errorf("population pass failed, skipping subscriber refresh: %v", err)
		return err
	}
	w.lastPopulated.Store(time.Now().UnixNano())

	sum, err := w.RefreshAll(ctx)
	if err != nil {
		w.log.Errorf("subscriber refresh aborted after %d subscribers: %v", sum.Processed, err)
		return err
	}
	w.log.Infof("refreshed %d subscribers (%d failed)", sum.Processed, sum.Failed)
	return nil
}

// RefreshAll walks every subscriber one at a time against the current pool.
// A failing subscriber is logged and skipped; only a cursor failure stops
// the pass.
func (w *Worker) RefreshAll(ctx context.Context) (RefreshSummary, error) {
	w.refreshingAll.Add(1)
	defer w.refreshingAll.Add(-1)

	var sum RefreshSummary
	p, err := w.pools.EnsureLoaded(ctx)
	if err != nil {
		return sum, err
	}

	cur, err := w.gw.Subscribers(ctx)
	if err != nil {
		return sum, err
	}
	defer func() {
		if err := cur.Close(context.WithoutCancel(ctx)); err != nil {
			w.log.Warnf("close subscriber cursor: %v", err)
		}
	}()

	for cur.Next(ctx) {
		sum.Processed++
		var sub models.Subscriber
		if err := cur.Decode(&sub); err != nil {
			sum.Failed++
			metrics.SubscriberRefreshes.WithLabelValues("scheduled", "error").Inc()
			w.log.Errorf("decode subscriber record: %v", err)
			continue
		}
		if err := w.refresh(ctx, "scheduled", &sub, p); err != nil {
			sum.Failed++
		}
	}
	if err := cur.Err(); err != nil {
		return sum, fmt.Errorf("subscriber cursor: %w", err)
	}
	return sum, nil
}

// RefreshOne handles one REFRESH_STORIES message, loading the pool first if
// this process has not seen it yet.
func (w *Worker) RefreshOne(ctx context.Context, msg trigger.Message) error {
	w.refreshingOne.Add(1)
	defer w.refreshingOne.Add(-1)

	sub, err := w.resolver.Resolve(ctx, msg)
	if err != nil {
		metrics.SubscriberRefreshes.WithLabelValues("on_demand", "error").Inc()
		w.log.Errorf("on-demand refresh: %v", err)
		return err
	}
	p, err := w.pools.EnsureLoaded(ctx)
	if err != nil {
		metrics.SubscriberRefreshes.WithLabelValues("on_demand", "error").Inc()
		w.log.Errorf("on-demand refresh for %s: %v", sub.ID, err)
		return err
	}
	return w.refresh(ctx, "on_demand", sub, p)
}

func (w *Worker) refresh(ctx context.Context, trig string, sub *models.Subscriber, p *models.StoryPool) error {
	_, _, err := w.matcher.Refresh(ctx, sub, p)
	switch {
	case err == nil:
		metrics.SubscriberRefreshes.WithLabelValues(trig, "ok").Inc()
	case errors.Is(err, store.ErrNotFound):
		metrics.SubscriberRefreshes.WithLabelValues(trig, "not_found").Inc()
		w.log.Errorf("subscriber %s was not found: %v", sub.ID, err)
	default:
		metrics.SubscriberRefreshes.WithLabelValues(trig, "error").Inc()
		w.log.Errorf("failed to update stories for subscriber %s: %v", sub.ID, err)
	}
	return err
}
