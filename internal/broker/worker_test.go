package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"radar/internal/logging"
)

func newTestWorker() *Worker {
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: discard{}})
	return NewWorker(&Broker{sys: sys})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNewWorkerLogsThroughBrokerSystem(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})
	w := NewWorker(&Broker{sys: sys})

	w.log.Info("Worker started")
	if !strings.Contains(buf.String(), "Worker started") {
		t.Fatalf("worker log bypassed the broker's system: %q", buf.String())
	}

	// The per-delivery access namespace stays silenced by default rules.
	w.access.Info("Task received")
	if strings.Contains(buf.String(), "Task received") {
		t.Fatalf("broker.access not silenced: %q", buf.String())
	}
}

func TestRegisterRejectsDuplicatesAndEmptyNames(t *testing.T) {
	w := newTestWorker()
	fn := func(context.Context, []json.RawMessage) (any, error) { return nil, nil }

	if err := w.Register("job", fn); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := w.Register("job", fn); err == nil {
		t.Fatal("duplicate registration must fail")
	}
	if err := w.Register("", fn); err == nil {
		t.Fatal("empty name must fail")
	}
	if err := w.Register("other", nil); err == nil {
		t.Fatal("nil function must fail")
	}
}

func TestExecuteSuccess(t *testing.T) {
	w := newTestWorker()
	if err := w.Register("double", func(_ context.Context, args []json.RawMessage) (any, error) {
		var n int
		if err := json.Unmarshal(args[0], &n); err != nil {
			return nil, err
		}
		return n * 2, nil
	}); err != nil {
		t.Fatal(err)
	}

	result := w.execute(context.Background(), &message{
		ID:   "1",
		Task: "double",
		Args: []json.RawMessage{json.RawMessage("21")},
	})

	if !result.Succeeded {
		t.Fatalf("result = %+v", result)
	}
	if string(result.Value) != "42" {
		t.Fatalf("value = %s", result.Value)
	}
	if result.ExecutionTime < 0 {
		t.Fatalf("execution_time = %f", result.ExecutionTime)
	}
}

func TestExecuteTaskError(t *testing.T) {
	w := newTestWorker()
	boom := errors.New("task says no")
	if err := w.Register("failing", func(context.Context, []json.RawMessage) (any, error) {
		return nil, boom
	}); err != nil {
		t.Fatal(err)
	}

	result := w.execute(context.Background(), &message{ID: "1", Task: "failing"})
	if result.Succeeded {
		t.Fatal("failing task reported success")
	}
	if result.Error != "task says no" {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestExecuteUnknownTask(t *testing.T) {
	w := newTestWorker()
	result := w.execute(context.Background(), &message{ID: "1", Task: "ghost"})
	if result.Succeeded {
		t.Fatal("unknown task reported success")
	}
	if !strings.Contains(result.Error, "unknown task") {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestExecuteIsolatesPanickingTask(t *testing.T) {
	w := newTestWorker()
	if err := w.Register("panics", func(context.Context, []json.RawMessage) (any, error) {
		panic("task exploded")
	}); err != nil {
		t.Fatal(err)
	}

	result := w.execute(context.Background(), &message{ID: "1", Task: "panics"})
	if result.Succeeded {
		t.Fatal("panicking task reported success")
	}
	if !strings.Contains(result.Error, "task exploded") {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestExecuteUnserializableReturnValue(t *testing.T) {
	w := newTestWorker()
	if err := w.Register("weird", func(context.Context, []json.RawMessage) (any, error) {
		return make(chan int), nil
	}); err != nil {
		t.Fatal(err)
	}

	result := w.execute(context.Background(), &message{ID: "1", Task: "weird"})
	if result.Succeeded {
		t.Fatal("unserializable return value reported success")
	}
	if !strings.Contains(result.Error, "encode return value") {
		t.Fatalf("error = %q", result.Error)
	}
}
