// Package broker is the task-dispatch collaborator: a Redis-stream
// backed queue for scheduling task invocations and awaiting their
// results, plus the worker loop that executes registered tasks and a
// periodic scheduler for recurring entries.
//
// The broker owns the "broker" logger subtree. Its operational logs
// flow through the shared logging pipeline under "broker.worker" and
// "broker.scheduler"; the raw per-delivery line under "broker.access"
// is silenced by default namespace policy because the worker emits a
// richer structured record for every delivery itself.
package broker
