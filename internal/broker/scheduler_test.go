package broker

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"radar/internal/logging"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeEnqueuer) Schedule(_ context.Context, task string, _ ...any) (*Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, task)
	return &Handle{ID: "fixed", Task: task}, nil
}

func (f *fakeEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestSystem() *logging.System {
	return logging.NewSystem(logging.Config{JSONFormat: true, Sink: discard{}})
}

func TestNewSchedulerValidatesEntries(t *testing.T) {
	queue := &fakeEnqueuer{}
	sys := newTestSystem()

	if _, err := NewScheduler(nil, nil, sys); err == nil {
		t.Fatal("nil broker must fail")
	}
	if _, err := NewScheduler(queue, []Entry{{Label: "x", Every: time.Second}}, sys); err == nil {
		t.Fatal("entry without task must fail")
	}
	if _, err := NewScheduler(queue, []Entry{{Label: "x", Task: "t"}}, sys); err == nil {
		t.Fatal("entry without interval must fail")
	}
	if _, err := NewScheduler(queue, []Entry{{Label: "x", Task: "t", Every: time.Second}}, sys); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
}

func TestSchedulerEnqueuesOnInterval(t *testing.T) {
	queue := &fakeEnqueuer{}
	scheduler, err := NewScheduler(queue, []Entry{
		{Label: "fast", Task: "tick", Every: 10 * time.Millisecond},
	}, newTestSystem())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for queue.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d enqueues before deadline", queue.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestSchedulerSurvivesEnqueueFailure(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})
	queue := &fakeEnqueuer{err: context.DeadlineExceeded}
	scheduler, err := NewScheduler(queue, []Entry{
		{Label: "failing", Task: "tick", Every: 5 * time.Millisecond},
	}, sys)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx)

	// Failures are logged through the system the scheduler was given
	// and the loop keeps ticking until cancellation.
	if !strings.Contains(buf.String(), "Scheduled enqueue failed") {
		t.Fatalf("failure not logged to the serving system: %q", buf.String())
	}
}
