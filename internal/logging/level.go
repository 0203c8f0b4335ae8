package logging

import (
	"fmt"
	"strings"
)

// Level is the ordered severity of a Record.
type Level int8

const (
	LevelNotSet Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the lowercase token used in rendered output.
// The top level renders as "critical", matching the conventional
// fatal/critical aliasing.
func (l Level) String() string {
	switch l {
	case LevelNotSet:
		return "notset"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel converts a configuration string into a Level. It accepts
// the usual aliases ("warn", "fatal") case-insensitively.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "notset":
		return LevelNotSet, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	default:
		return LevelNotSet, fmt.Errorf("log level: unsupported value %q", value)
	}
}
