package logging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config carries the options the settings collaborator supplies once
// at initialization. Zero values fall back to documented defaults:
// minimum level INFO, human rendering, stderr sink, DefaultRules.
type Config struct {
	MinLevel   Level
	JSONFormat bool
	Colors     bool
	Sink       io.Writer
	Rules      []Rule
	// ExtraProcessors run after the built-in enrichment stages, before
	// rendering.
	ExtraProcessors []Processor
}

// pipeline is the immutable read side of a System: swapped atomically
// on (re)configuration, shared by every concurrent log call.
type pipeline struct {
	chain    Chain
	renderer Renderer
	minLevel Level
	sink     *lockedSink
}

// System is the process-wide logging pipeline: processor chain,
// renderer, sink, namespace rules and the logger registry.
type System struct {
	pipe    atomic.Pointer[pipeline]
	mu      sync.Mutex
	rules   []Rule
	loggers map[string]*Logger
}

var (
	globalMu         sync.Mutex
	global           *System
	globalConfigured bool
)

// Setup constructs the process-wide System and installs the slog
// bridge so legacy and third-party log calls converge on the same
// pipeline. Repeat calls reuse the existing instance instead of
// attaching duplicate sinks or hooks.
func Setup(cfg Config) *System {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfigured {
		return global
	}
	if global == nil {
		global = NewSystem(cfg)
	} else {
		// A logger was requested before Setup ran; keep the registry
		// and swap in the configured pipeline.
		global.configure(cfg)
	}
	globalConfigured = true
	slog.SetDefault(slog.New(global.SlogHandler("root")))
	return global
}

// Default returns the process-wide System, lazily built with default
// configuration when Setup has not run yet.
func Default() *System {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = NewSystem(Config{})
	}
	return global
}

// GetLogger returns the named logger from the process-wide System.
func GetLogger(name string) *Logger {
	return Default().Logger(name)
}

// NewSystem builds an isolated System. Production code goes through
// Setup; tests and embedders construct their own instance.
func NewSystem(cfg Config) *System {
	s := &System{loggers: make(map[string]*Logger)}
	s.configure(cfg)
	return s
}

func (s *System) configure(cfg Config) {
	minLevel := cfg.MinLevel
	if minLevel == LevelNotSet {
		minLevel = LevelInfo
	}
	sink := cfg.Sink
	if sink == nil {
		sink = os.Stderr
	}
	var renderer Renderer
	if cfg.JSONFormat {
		renderer = NewJSONRenderer()
	} else {
		renderer = NewConsoleRenderer(cfg.Colors)
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	chain := sharedChain(cfg.JSONFormat)
	chain = append(chain, cfg.ExtraProcessors...)

	s.pipe.Store(&pipeline{
		chain:    chain,
		renderer: renderer,
		minLevel: minLevel,
		sink:     &lockedSink{w: sink},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
	for name, lg := range s.loggers {
		lg.state.apply(s.rules, name)
	}
}

// Logger returns the registry logger for name, creating it under the
// active namespace rules on first use.
func (s *System) Logger(name string) *Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lg, ok := s.loggers[name]; ok {
		return lg
	}
	lg := &Logger{sys: s, name: name, state: &loggerState{propagate: true}}
	lg.state.apply(s.rules, name)
	s.loggers[name] = lg
	return lg
}

func (s *System) enabled(level Level) bool {
	p := s.pipe.Load()
	return p != nil && level >= p.minLevel
}

// dispatch is the shared pipeline tail both ingestion paths terminate
// in: run the chain once, render once, write one atomic line.
func (s *System) dispatch(ctx context.Context, lg *Logger, level Level, rec *Record) {
	p := s.pipe.Load()
	if p == nil || level < p.minLevel {
		return
	}
	propagate, sinks := lg.state.snapshot()
	if !propagate && len(sinks) == 0 {
		return
	}

	if err := p.chain.Run(ctx, lg.name, level, rec); err != nil {
		if errors.Is(err, ErrDropRecord) {
			return
		}
		s.fallback(p, rec.Event(), err)
		return
	}

	if propagate {
		var buf bytes.Buffer
		if err := p.renderer.Render(&buf, rec); err != nil {
			s.fallback(p, rec.Event(), err)
		} else if err := p.sink.WriteLine(buf.Bytes()); err != nil {
			sinkFailure(err)
		}
	}
	for _, ds := range sinks {
		renderer := ds.renderer
		if renderer == nil {
			renderer = p.renderer
		}
		var buf bytes.Buffer
		if err := renderer.Render(&buf, rec); err != nil {
			continue
		}
		if err := ds.write(buf.Bytes()); err != nil {
			sinkFailure(err)
		}
	}
}

// fallback surfaces a processor failure as one best-effort diagnostic
// line in the active render mode, written directly to the sink and
// bypassing the chain so pipeline failures are never silent and never
// recursive.
func (s *System) fallback(p *pipeline, event string, perr error) {
	rec := NewRecord("log pipeline failure",
		Field{Key: FieldLevel, Value: LevelError.String()},
		Field{Key: FieldTimestamp, Value: time.Now().UTC().Format(timestampLayout)},
		Field{Key: "orig_event", Value: event},
		Field{Key: "error", Value: perr.Error()},
	)
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, rec); err != nil {
		return
	}
	if err := p.sink.WriteLine(buf.Bytes()); err != nil {
		sinkFailure(err)
	}
}

// sinkFailure reports a rejected sink write on stderr. It is never
// retried and never re-enters the pipeline; swapped in tests.
var sinkFailure = func(err error) {
	fmt.Fprintf(os.Stderr, "radar: log sink write failed: %v\n", err)
}

// lockedSink serializes writes so concurrent records never interleave
// partial lines.
type lockedSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *lockedSink) WriteLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(line)
	return err
}
