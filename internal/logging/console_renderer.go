package logging

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// consoleRenderer emits one human-readable line per record:
//
//	<timestamp> [<level>] <logger>: <event> <key=value ...>
//
// The level token alone is colorized; exception and stack text are
// pretty-printed on the following lines. With colors disabled the
// output contains no ANSI escape sequences at all.
type consoleRenderer struct {
	colors map[string]*color.Color
}

// NewConsoleRenderer returns the human renderer. When enableColors is
// false every token renders plain.
func NewConsoleRenderer(enableColors bool) Renderer {
	styles := map[string]*color.Color{
		"debug":    color.New(color.FgCyan),
		"info":     color.New(color.FgGreen),
		"warning":  color.New(color.FgYellow),
		"error":    color.New(color.FgRed),
		"critical": color.New(color.FgRed, color.Bold),
	}
	for _, c := range styles {
		if enableColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &consoleRenderer{colors: styles}
}

func (r *consoleRenderer) Render(buf *bytes.Buffer, rec *Record) error {
	var timestamp, level, logger string
	var exception, stack any

	extras := make([]Field, 0, rec.Len())
	for _, field := range rec.Fields() {
		switch field.Key {
		case FieldTimestamp:
			timestamp = valueText(field.Value)
		case FieldLevel:
			level = valueText(field.Value)
		case FieldLogger:
			logger = valueText(field.Value)
		case FieldEvent:
		case FieldException:
			exception = field.Value
		case FieldStack:
			stack = field.Value
		default:
			extras = append(extras, field)
		}
	}

	buf.WriteString(timestamp)
	buf.WriteString(" [")
	buf.WriteString(r.levelToken(level))
	buf.WriteByte(']')
	if logger != "" {
		buf.WriteByte(' ')
		buf.WriteString(logger)
		buf.WriteByte(':')
	}
	buf.WriteByte(' ')
	buf.WriteString(rec.Event())
	for _, field := range extras {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(formatConsoleValue(field.Value))
	}
	buf.WriteByte('\n')

	if exception != nil {
		writeBlock(buf, valueText(exception))
	}
	if stack != nil {
		writeBlock(buf, valueText(stack))
	}
	return nil
}

// levelToken colorizes known level names; an unmapped level falls back
// to the plain token.
func (r *consoleRenderer) levelToken(level string) string {
	if c, ok := r.colors[level]; ok {
		return c.Sprint(level)
	}
	return level
}

func writeBlock(buf *bytes.Buffer, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		buf.WriteString("    ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}

func valueText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func formatConsoleValue(value any) string {
	switch v := value.(type) {
	case string:
		return quoteIfNeeded(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Duration:
		return v.String()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case error:
		return quoteIfNeeded(v.Error())
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
