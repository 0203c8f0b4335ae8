package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"radar/internal/config"
	"radar/internal/logging"
)

const (
	defaultStream       = "radar:tasks"
	defaultGroup        = "radar-workers"
	defaultResultPrefix = "radar:results:"
)

// ErrResultTimeout reports that no result arrived within the await
// window.
var ErrResultTimeout = errors.New("broker: timed out waiting for task result")

// Broker publishes task invocations onto a Redis stream and retrieves
// their results from the list-based result backend.
type Broker struct {
	client       *redis.Client
	stream       string
	group        string
	resultPrefix string
	resultTTL    time.Duration
	sys          *logging.System
	log          *logging.Logger
}

// driverLogger routes the Redis driver's internal messages into the
// serving pipeline under the "redis" namespace.
type driverLogger struct {
	log *logging.Logger
}

func (d driverLogger) Printf(ctx context.Context, format string, v ...any) {
	d.log.Log(ctx, logging.LevelWarning, format, logging.Args(v...))
}

// New connects a Broker using the configured Redis address. All broker
// logs flow through sys; a nil sys falls back to the process-wide
// system.
func New(cfg *config.Config, sys *logging.System) *Broker {
	if sys == nil {
		sys = logging.Default()
	}
	redis.SetLogger(driverLogger{log: sys.Logger("redis")})
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	return &Broker{
		client:       client,
		stream:       defaultStream,
		group:        defaultGroup,
		resultPrefix: defaultResultPrefix,
		resultTTL:    time.Duration(cfg.ResultTTLSeconds) * time.Second,
		sys:          sys,
		log:          sys.Logger("broker"),
	}
}

// Ping verifies the Redis connection.
func (b *Broker) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *Broker) Close() error {
	return b.client.Close()
}

// Schedule publishes one task invocation and returns a handle for
// awaiting its result.
func (b *Broker) Schedule(ctx context.Context, task string, args ...any) (*Handle, error) {
	id := uuid.NewString()
	payload, err := encodeMessage(id, task, args)
	if err != nil {
		return nil, err
	}
	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{streamField: payload},
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("publish task %s: %w", task, err)
	}
	b.log.Log(ctx, logging.LevelInfo, "Task scheduled",
		logging.String("task", task),
		logging.String("task_id", id),
	)
	return &Handle{ID: id, Task: task}, nil
}

// AwaitResult blocks until the task's result arrives or the timeout
// elapses.
func (b *Broker) AwaitResult(ctx context.Context, handle *Handle, timeout time.Duration) (*Result, error) {
	values, err := b.client.BRPop(ctx, timeout, resultKey(b.resultPrefix, handle.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("await result for task %s: %w", handle.Task, err)
	}
	// BRPOP returns [key, value].
	if len(values) != 2 {
		return nil, fmt.Errorf("await result for task %s: unexpected reply shape", handle.Task)
	}
	var result Result
	if err := json.Unmarshal([]byte(values[1]), &result); err != nil {
		return nil, fmt.Errorf("decode result for task %s: %w", handle.Task, err)
	}
	return &result, nil
}

// publishResult stores the result for one execution and expires it
// after the configured TTL.
func (b *Broker) publishResult(ctx context.Context, id string, result *Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", id, err)
	}
	key := resultKey(b.resultPrefix, id)
	if err := b.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("store result for %s: %w", id, err)
	}
	if err := b.client.Expire(ctx, key, b.resultTTL).Err(); err != nil {
		return fmt.Errorf("expire result for %s: %w", id, err)
	}
	return nil
}
