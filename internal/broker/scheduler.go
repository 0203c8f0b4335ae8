package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"radar/internal/logging"
)

// enqueuer is the slice of the Broker the Scheduler needs.
type enqueuer interface {
	Schedule(ctx context.Context, task string, args ...any) (*Handle, error)
}

// Entry is one recurring schedule: the named task is re-enqueued every
// interval.
type Entry struct {
	Label string
	Task  string
	Args  []any
	Every time.Duration
}

// Scheduler re-enqueues labeled entries on their intervals until the
// context is canceled.
type Scheduler struct {
	queue   enqueuer
	entries []Entry
	log     *logging.Logger
}

// NewScheduler validates the entries and builds a scheduler over the
// given broker, logging through sys. A nil sys falls back to the
// process-wide system.
func NewScheduler(queue enqueuer, entries []Entry, sys *logging.System) (*Scheduler, error) {
	if queue == nil {
		return nil, errors.New("broker: scheduler requires a broker")
	}
	if sys == nil {
		sys = logging.Default()
	}
	for _, entry := range entries {
		if entry.Task == "" {
			return nil, fmt.Errorf("broker: schedule entry %q has no task", entry.Label)
		}
		if entry.Every <= 0 {
			return nil, fmt.Errorf("broker: schedule entry %q has no interval", entry.Label)
		}
	}
	return &Scheduler{
		queue:   queue,
		entries: entries,
		log:     sys.Logger("broker.scheduler"),
	}, nil
}

// Run ticks every entry on its own interval and blocks until the
// context is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, entry := range s.entries {
		wg.Add(1)
		go func(entry Entry) {
			defer wg.Done()
			s.tickLoop(ctx, entry)
		}(entry)
	}
	wg.Wait()
}

func (s *Scheduler) tickLoop(ctx context.Context, entry Entry) {
	ticker := time.NewTicker(entry.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, entry)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, entry Entry) {
	handle, err := s.queue.Schedule(ctx, entry.Task, entry.Args...)
	if err != nil {
		s.log.Log(ctx, logging.LevelError, "Scheduled enqueue failed",
			logging.String("label", entry.Label),
			logging.String("task", entry.Task),
			logging.Err(err),
		)
		return
	}
	s.log.Log(ctx, logging.LevelInfo, "Scheduled task enqueued",
		logging.String("label", entry.Label),
		logging.String("task", entry.Task),
		logging.String("task_id", handle.ID),
	)
}
