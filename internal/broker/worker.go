package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"radar/internal/logging"
)

// TaskFunc executes one task invocation. Arguments arrive as the raw
// JSON values the caller scheduled; the return value is serialized
// into the result backend.
type TaskFunc func(ctx context.Context, args []json.RawMessage) (any, error)

// Worker consumes the task stream through a consumer group and
// executes registered tasks.
type Worker struct {
	broker   *Broker
	consumer string

	mu    sync.RWMutex
	tasks map[string]TaskFunc

	log    *logging.Logger
	access *logging.Logger
}

// NewWorker builds a worker bound to the broker's stream, logging
// through the broker's system.
func NewWorker(b *Broker) *Worker {
	hostname, _ := os.Hostname()
	return &Worker{
		broker:   b,
		consumer: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		tasks:    make(map[string]TaskFunc),
		log:      b.sys.Logger("broker.worker"),
		access:   b.sys.Logger("broker.access"),
	}
}

// Register binds a task name to its implementation.
func (w *Worker) Register(name string, fn TaskFunc) error {
	if name == "" || fn == nil {
		return errors.New("broker: task registration requires a name and a function")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.tasks[name]; exists {
		return fmt.Errorf("broker: task %q already registered", name)
	}
	w.tasks[name] = fn
	return nil
}

// Run consumes and executes tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.ensureGroup(ctx); err != nil {
		return err
	}
	w.log.Log(ctx, logging.LevelInfo, "Worker started",
		logging.String("consumer", w.consumer),
		logging.String("stream", w.broker.stream),
	)

	for {
		if err := ctx.Err(); err != nil {
			w.log.Log(ctx, logging.LevelInfo, "Worker stopping")
			return nil
		}
		streams, err := w.broker.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.broker.group,
			Consumer: w.consumer,
			Streams:  []string{w.broker.stream, ">"},
			Count:    16,
			Block:    2 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.log.Log(ctx, logging.LevelError, "Task stream read failed", logging.Err(err))
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, entry := range stream.Messages {
				w.handle(ctx, entry)
			}
		}
	}
}

func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.broker.client.XGroupCreateMkStream(ctx, w.broker.stream, w.broker.group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}

func (w *Worker) handle(ctx context.Context, entry redis.XMessage) {
	defer w.ack(ctx, entry.ID)

	payload, ok := entry.Values[streamField].(string)
	if !ok {
		w.log.Log(ctx, logging.LevelWarning, "Discarding malformed stream entry",
			logging.String("entry_id", entry.ID))
		return
	}
	msg, err := decodeMessage([]byte(payload))
	if err != nil {
		w.log.Log(ctx, logging.LevelWarning, "Discarding undecodable task", logging.Err(err),
			logging.String("entry_id", entry.ID))
		return
	}

	// Raw delivery line; silenced by default namespace policy in favor
	// of the richer completion record below.
	w.access.Log(ctx, logging.LevelInfo, "Task received",
		logging.String("task", msg.Task),
		logging.String("task_id", msg.ID),
	)

	taskCtx := logging.BindFields(ctx,
		logging.String("task", msg.Task),
		logging.String("task_id", msg.ID),
	)
	result := w.execute(taskCtx, msg)
	if err := w.broker.publishResult(ctx, msg.ID, result); err != nil {
		w.log.Log(taskCtx, logging.LevelError, "Result publish failed", logging.Err(err))
		return
	}
	level := logging.LevelInfo
	event := "Task completed"
	if !result.Succeeded {
		level = logging.LevelError
		event = "Task failed"
	}
	w.log.Log(taskCtx, level, event,
		logging.Bool("succeeded", result.Succeeded),
		logging.Float64("execution_time", result.ExecutionTime),
	)
}

// execute runs one task with timing and panic isolation. A panicking
// task fails its own result; it does not take the worker down.
func (w *Worker) execute(ctx context.Context, msg *message) (result *Result) {
	w.mu.RLock()
	fn, ok := w.tasks[msg.Task]
	w.mu.RUnlock()
	if !ok {
		return &Result{Succeeded: false, Error: fmt.Sprintf("unknown task %q", msg.Task)}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			w.log.Log(ctx, logging.LevelError, "Task panicked",
				logging.String("exception_type", fmt.Sprintf("%T", r)),
				logging.String("exception", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
			result = &Result{
				Succeeded:     false,
				Error:         fmt.Sprintf("panic: %v", r),
				ExecutionTime: time.Since(start).Seconds(),
			}
		}
	}()

	value, err := fn(ctx, msg.Args)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return &Result{Succeeded: false, Error: err.Error(), ExecutionTime: elapsed}
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return &Result{
			Succeeded:     false,
			Error:         fmt.Sprintf("encode return value: %v", err),
			ExecutionTime: elapsed,
		}
	}
	return &Result{Succeeded: true, Value: encoded, ExecutionTime: elapsed}
}

func (w *Worker) ack(ctx context.Context, entryID string) {
	if err := w.broker.client.XAck(ctx, w.broker.stream, w.broker.group, entryID).Err(); err != nil {
		w.log.Log(ctx, logging.LevelWarning, "Task ack failed", logging.Err(err),
			logging.String("entry_id", entryID))
	}
}
