package scheduler

import (
	"fmt"
	"time"

	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler turns a cron expression (including "@every <duration>") into a
// stream of ticks for the worker's dispatch loop.
type Scheduler struct {
	cron    *cron.Cron
	ticks   chan time.Time
	spec    string
	entryID cron.EntryID
}

// New parses spec and prepares the schedule; ticks start after Start.
func New(spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		ticks: make(chan time.Time, 1),
		spec:  spec,
	}
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entryID = id
	return s, nil
}

// fire hands a tick to the loop; a tick the loop has not picked up yet is
// not duplicated.
func (s *Scheduler) fire() {
	select {
	case s.ticks <- time.Now():
	default:
		logger.With("scheduler").Warnf("previous tick still pending, skipping")
	}
}

// Ticks returns the channel receiving one value per scheduled run.
func (s *Scheduler) Ticks() <-chan time.Time { return s.ticks }

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.With("scheduler").Infof("population scheduled %q", s.spec)
}

// Stop halts the schedule and waits for a running fire call to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
