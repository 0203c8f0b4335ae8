package broker

import (
	"encoding/json"
	"fmt"
	"time"
)

// streamField is the Redis stream entry field carrying the encoded
// message.
const streamField = "payload"

// message is the wire form of one scheduled task invocation.
type message struct {
	ID         string            `json:"id"`
	Task       string            `json:"task"`
	Args       []json.RawMessage `json:"args"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// Handle identifies a scheduled task for result retrieval.
type Handle struct {
	ID   string
	Task string
}

// Result is the terminal outcome of one task execution.
type Result struct {
	Succeeded     bool            `json:"succeeded"`
	Value         json.RawMessage `json:"value,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExecutionTime float64         `json:"execution_time"`
}

func encodeMessage(id, task string, args []any) ([]byte, error) {
	encoded := make([]json.RawMessage, 0, len(args))
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("encode arg %d for task %s: %w", i, task, err)
		}
		encoded = append(encoded, raw)
	}
	return json.Marshal(message{
		ID:         id,
		Task:       task,
		Args:       encoded,
		EnqueuedAt: time.Now().UTC(),
	})
}

func decodeMessage(data []byte) (*message, error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode task message: %w", err)
	}
	if msg.ID == "" || msg.Task == "" {
		return nil, fmt.Errorf("decode task message: missing id or task name")
	}
	return &msg, nil
}

func resultKey(prefix, id string) string {
	return prefix + id
}
