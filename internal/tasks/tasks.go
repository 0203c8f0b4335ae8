// Package tasks holds the task functions the worker executes.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"radar/internal/broker"
	"radar/internal/logging"
)

// AddOneName is the registered name of the AddOne task.
const AddOneName = "add_one"

// Register binds every built-in task to the worker.
func Register(w *broker.Worker) error {
	return w.Register(AddOneName, AddOne)
}

// AddOne increments its single integer argument.
func AddOne(ctx context.Context, args []json.RawMessage) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("add_one: expected 1 argument, got %d", len(args))
	}
	var value int
	if err := json.Unmarshal(args[0], &value); err != nil {
		return nil, fmt.Errorf("add_one: %w", err)
	}
	logging.GetLogger("radar.tasks").Log(ctx, logging.LevelInfo,
		"Adding one to the value", logging.Int("value", value))
	return value + 1, nil
}
