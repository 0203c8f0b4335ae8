package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrDropRecord is returned by a processor to discard the record.
var ErrDropRecord = errors.New("logging: record dropped by processor")

// Processor is one deterministic enrichment step. Processors mutate
// the record in place and must not perform I/O.
type Processor func(ctx context.Context, logger string, level Level, rec *Record) error

// Chain is an ordered processor sequence, built once at Setup and
// read-only thereafter.
type Chain []Processor

// Run applies every processor in order. The first error aborts the
// chain for this record.
func (c Chain) Run(ctx context.Context, logger string, level Level, rec *Record) error {
	for _, p := range c {
		if err := p(ctx, logger, level, rec); err != nil {
			return err
		}
	}
	return nil
}

const timestampLayout = "2006-01-02T15:04:05.000000Z"

var processID = os.Getpid()

// sharedChain builds the enrichment stages common to the native and
// foreign ingestion paths, in their required order. When structured is
// true the final stage pre-formats exception values, since the console
// renderer prefers to pretty-print them itself.
func sharedChain(structured bool) Chain {
	chain := Chain{
		mergeContextFields,
		addLoggerName,
		addProcessID,
		addLevel,
		formatPositionalArgs,
		dropColorMessage,
		addTimestamp,
		renderStackInfo,
		decodeBytes,
		addCallsite,
	}
	if structured {
		chain = append(chain, formatException)
	}
	return chain
}

func mergeContextFields(ctx context.Context, _ string, _ Level, rec *Record) error {
	rec.prependMissing(ContextFields(ctx))
	return nil
}

func addLoggerName(_ context.Context, logger string, _ Level, rec *Record) error {
	rec.Set(FieldLogger, logger)
	return nil
}

func addProcessID(_ context.Context, _ string, _ Level, rec *Record) error {
	rec.Set(FieldProcessID, processID)
	return nil
}

func addLevel(_ context.Context, _ string, level Level, rec *Record) error {
	rec.Set(FieldLevel, level.String())
	return nil
}

func formatPositionalArgs(_ context.Context, _ string, _ Level, rec *Record) error {
	value, ok := rec.Get(FieldPositionalArgs)
	if !ok {
		return nil
	}
	rec.Delete(FieldPositionalArgs)
	args, ok := value.([]any)
	if !ok {
		return fmt.Errorf("positional args: unexpected type %T", value)
	}
	if len(args) == 0 {
		return nil
	}
	rec.Set(FieldEvent, fmt.Sprintf(rec.Event(), args...))
	return nil
}

func dropColorMessage(_ context.Context, _ string, _ Level, rec *Record) error {
	rec.Delete(FieldColorMessage)
	return nil
}

func addTimestamp(_ context.Context, _ string, _ Level, rec *Record) error {
	rec.Set(FieldTimestamp, time.Now().UTC().Format(timestampLayout))
	return nil
}

func renderStackInfo(_ context.Context, _ string, _ Level, rec *Record) error {
	value, ok := rec.Get(FieldStackInfo)
	if !ok {
		return nil
	}
	rec.Delete(FieldStackInfo)
	if requested, _ := value.(bool); requested && !rec.Has(FieldStack) {
		rec.Set(FieldStack, string(debug.Stack()))
	}
	return nil
}

func decodeBytes(_ context.Context, _ string, _ Level, rec *Record) error {
	fields := rec.Fields()
	for i := range fields {
		switch v := fields[i].Value.(type) {
		case []byte:
			fields[i].Value = strings.ToValidUTF8(string(v), "�")
		case string:
			if !utf8.ValidString(v) {
				fields[i].Value = strings.ToValidUTF8(v, "�")
			}
		}
	}
	return nil
}

func addCallsite(_ context.Context, _ string, _ Level, rec *Record) error {
	pc := rec.PC()
	if pc == 0 {
		return nil
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return nil
	}
	rec.Set(FieldFilename, filepath.Base(frame.File))
	rec.Set(FieldFuncName, shortFuncName(frame.Function))
	rec.Set(FieldLineno, frame.Line)
	return nil
}

func formatException(_ context.Context, _ string, _ Level, rec *Record) error {
	value, ok := rec.Get(FieldException)
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case string:
	case error:
		rec.Set(FieldException, v.Error())
	default:
		rec.Set(FieldException, fmt.Sprint(v))
	}
	return nil
}

func shortFuncName(qualified string) string {
	if idx := strings.LastIndexByte(qualified, '/'); idx >= 0 {
		qualified = qualified[idx+1:]
	}
	if idx := strings.LastIndexByte(qualified, '.'); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}
