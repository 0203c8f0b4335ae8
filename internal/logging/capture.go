package logging

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"

	"golang.org/x/sys/unix"
)

// CapturePanic converts an otherwise-uncaught panic into exactly one
// CRITICAL record carrying the panic value's type, message and stack,
// routed through the normal chain and renderer, then re-panics so
// default crash termination proceeds. Use it as the first deferred
// call of a goroutine's top-level function:
//
//	defer sys.CapturePanic()
func (s *System) CapturePanic() {
	r := recover()
	if r == nil {
		return
	}
	rec := NewRecord("Uncaught exception",
		Field{Key: FieldExceptionType, Value: fmt.Sprintf("%T", r)},
		Field{Key: FieldException, Value: fmt.Sprint(r)},
		Field{Key: FieldStack, Value: string(debug.Stack())},
	)
	s.dispatch(context.Background(), s.Logger("root"), LevelCritical, rec)
	panic(r)
}

// raiseSignal re-delivers a signal to the current process; swapped in
// tests.
var raiseSignal = func(sig os.Signal) {
	if s, ok := sig.(unix.Signal); ok {
		_ = unix.Kill(os.Getpid(), s)
	}
}

// InterruptGuard preserves terminal interrupt semantics while the
// capture hooks are installed: the first SIGINT stops the guard's own
// subscription and re-raises the signal, so the disposition that was
// active before installation handles it. Interrupts are never logged.
type InterruptGuard struct {
	ch   chan os.Signal
	stop sync.Once
	done chan struct{}
}

// InstallInterruptGuard subscribes to SIGINT and delegates the first
// delivery to the prior disposition.
func InstallInterruptGuard() *InterruptGuard {
	g := &InterruptGuard{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(g.ch, os.Interrupt)
	go func() {
		select {
		case sig := <-g.ch:
			g.delegate(sig)
		case <-g.done:
		}
	}()
	return g
}

func (g *InterruptGuard) delegate(sig os.Signal) {
	g.Stop()
	raiseSignal(sig)
}

// Stop detaches the guard without delegating.
func (g *InterruptGuard) Stop() {
	g.stop.Do(func() {
		signal.Stop(g.ch)
		close(g.done)
	})
}
