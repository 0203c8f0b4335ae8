package logging

import (
	"context"
	"log/slog"
	"strings"
)

// slogBridge is the foreign ingestion path: it adapts slog records,
// including the process default logger and the stdlib log package
// which slog.SetDefault reroutes, onto the same processor chain and
// renderer as the native API. A "logger" attribute overrides the
// bridge's default logger name, so third-party subsystems land in
// their own namespace and stay subject to namespace rules.
type slogBridge struct {
	sys    *System
	name   string
	bound  []Field
	groups []string
}

// SlogHandler returns an slog.Handler feeding this System under the
// given default logger name.
func (s *System) SlogHandler(name string) slog.Handler {
	return &slogBridge{sys: s, name: name}
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return b.sys.enabled(levelFromSlog(level))
}

func (b *slogBridge) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]Field, 0, record.NumAttrs()+len(b.bound))
	fields = append(fields, b.bound...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendSlogAttr(fields, b.groups, attr)
		return true
	})

	name := b.name
	for i := 0; i < len(fields); i++ {
		if fields[i].Key == FieldLogger {
			if s, ok := fields[i].Value.(string); ok && s != "" {
				name = s
			}
			fields = append(fields[:i], fields[i+1:]...)
			i--
		}
	}

	rec := NewRecord(record.Message, fields...)
	rec.SetPC(record.PC)
	b.sys.dispatch(ctx, b.sys.Logger(name), levelFromSlog(record.Level), rec)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := b.clone()
	for _, attr := range attrs {
		clone.bound = appendSlogAttr(clone.bound, clone.groups, attr)
	}
	return clone
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	clone := b.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (b *slogBridge) clone() *slogBridge {
	clone := &slogBridge{sys: b.sys, name: b.name}
	clone.bound = append([]Field(nil), b.bound...)
	clone.groups = append([]string(nil), b.groups...)
	return clone
}

// appendSlogAttr flattens an attribute (recursing into groups with
// dotted keys) into plain fields.
func appendSlogAttr(dst []Field, groups []string, attr slog.Attr) []Field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := groups
		if attr.Key != "" {
			next = append(append([]string(nil), groups...), attr.Key)
		}
		for _, nested := range attr.Value.Group() {
			dst = appendSlogAttr(dst, next, nested)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 && key != "" {
		key = strings.Join(groups, ".") + "." + key
	}
	if key == "" {
		return dst
	}
	return append(dst, Field{Key: key, Value: slogValueToAny(attr.Value)})
}

func slogValueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindDuration:
		return v.Duration()
	case slog.KindTime:
		return v.Time()
	default:
		return v.Any()
	}
}

func levelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarning
	case level < slog.LevelError+4:
		return LevelError
	default:
		return LevelCritical
	}
}
