package logging

import (
	"context"
	"io"
	"runtime"
	"sync"
)

// loggerState is the per-name registry state shared by every Logger
// view of the same name: the propagation flag and any directly
// attached sinks, both governed by namespace rules at Setup.
type loggerState struct {
	mu        sync.Mutex
	propagate bool
	sinks     []directSink
}

type directSink struct {
	w        io.Writer
	renderer Renderer
}

func (ds directSink) write(line []byte) error {
	_, err := ds.w.Write(line)
	return err
}

func (st *loggerState) apply(rules []Rule, name string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	rule, ok := matchRule(rules, name)
	if !ok {
		st.propagate = true
		return
	}
	if rule.DetachSinks {
		st.sinks = nil
	}
	st.propagate = rule.Propagate
}

func (st *loggerState) snapshot() (bool, []directSink) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.propagate, st.sinks
}

// Logger is a named entry point into the shared pipeline. Loggers are
// cheap views: With returns a copy carrying extra bound fields while
// sharing registry state with every other view of the same name.
type Logger struct {
	sys   *System
	name  string
	state *loggerState
	bound []Field
}

// Name returns the dotted logger name.
func (l *Logger) Name() string {
	return l.name
}

// With returns a logger whose records always carry the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	if len(fields) == 0 {
		return l
	}
	bound := make([]Field, 0, len(l.bound)+len(fields))
	bound = append(bound, l.bound...)
	bound = append(bound, fields...)
	return &Logger{sys: l.sys, name: l.name, state: l.state, bound: bound}
}

// AttachSink binds a direct sink to this logger name, independent of
// the shared root sink. A nil renderer reuses the pipeline's renderer.
// Namespace rules with DetachSinks remove such bindings at Setup.
func (l *Logger) AttachSink(w io.Writer, renderer Renderer) {
	if w == nil {
		return
	}
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.sinks = append(l.state.sinks, directSink{w: w, renderer: renderer})
}

func (l *Logger) Debug(event string, fields ...Field) {
	l.log(context.Background(), LevelDebug, event, fields)
}

func (l *Logger) Info(event string, fields ...Field) {
	l.log(context.Background(), LevelInfo, event, fields)
}

func (l *Logger) Warn(event string, fields ...Field) {
	l.log(context.Background(), LevelWarning, event, fields)
}

func (l *Logger) Error(event string, fields ...Field) {
	l.log(context.Background(), LevelError, event, fields)
}

func (l *Logger) Critical(event string, fields ...Field) {
	l.log(context.Background(), LevelCritical, event, fields)
}

// Log issues a record at an explicit level with an ambient context,
// so context-bound fields reach the chain's merge stage.
func (l *Logger) Log(ctx context.Context, level Level, event string, fields ...Field) {
	l.log(ctx, level, event, fields)
}

func (l *Logger) log(ctx context.Context, level Level, event string, fields []Field) {
	if !l.sys.enabled(level) {
		return
	}
	combined := fields
	if len(l.bound) > 0 {
		combined = make([]Field, 0, len(l.bound)+len(fields))
		combined = append(combined, l.bound...)
		combined = append(combined, fields...)
	}
	rec := NewRecord(event, combined...)
	var pcs [1]uintptr
	// Skip runtime.Callers, log, and the exported wrapper.
	runtime.Callers(3, pcs[:])
	rec.SetPC(pcs[0])
	l.sys.dispatch(ctx, l, level, rec)
}
