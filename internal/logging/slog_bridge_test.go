package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"radar/internal/logging"
)

var (
	timestampPattern = regexp.MustCompile(`"timestamp":"[^"]*"`)
	linenoPattern    = regexp.MustCompile(`"lineno":\d+`)
)

func maskVariableFields(line string) string {
	line = timestampPattern.ReplaceAllString(line, `"timestamp":"T"`)
	return linenoPattern.ReplaceAllString(line, `"lineno":0`)
}

func TestForeignPathMatchesNativePathByteForByte(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})

	sys.Logger("api").Info("x", logging.Int("value", 1))
	slog.New(sys.SlogHandler("root")).Info("x", "logger", "api", "value", 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	native := maskVariableFields(lines[0])
	foreign := maskVariableFields(lines[1])
	if native != foreign {
		t.Fatalf("paths diverge:\n native: %s\nforeign: %s", native, foreign)
	}
}

func TestBridgeDefaultLoggerName(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})

	slog.New(sys.SlogHandler("root")).Warn("plain warning")

	decoded := parseLine(t, strings.TrimRight(buf.String(), "\n"))
	if decoded["logger"] != "root" {
		t.Fatalf("logger = %v", decoded["logger"])
	}
	if decoded["level"] != "warning" {
		t.Fatalf("level = %v", decoded["level"])
	}
}

func TestBridgeHonorsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})

	lg := slog.New(sys.SlogHandler("root"))
	lg.Debug("too quiet")

	if buf.Len() != 0 {
		t.Fatalf("debug record passed INFO filter: %q", buf.String())
	}
}

func TestBridgeFlattensGroupsWithDottedKeys(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})

	slog.New(sys.SlogHandler("root")).With("region", "eu").
		WithGroup("req").Info("served", "status", 200)

	decoded := parseLine(t, strings.TrimRight(buf.String(), "\n"))
	if decoded["region"] != "eu" {
		t.Fatalf("bound attr missing: %v", decoded)
	}
	if v, ok := decoded["req.status"].(float64); !ok || v != 200 {
		t.Fatalf("grouped attr = %v", decoded["req.status"])
	}
}

func TestBridgeMapsHighSlogLevelsToCritical(t *testing.T) {
	var buf bytes.Buffer
	sys := logging.NewSystem(logging.Config{JSONFormat: true, Sink: &buf})

	lg := slog.New(sys.SlogHandler("root"))
	lg.Log(context.Background(), slog.LevelError+4, "catastrophe")

	decoded := parseLine(t, strings.TrimRight(buf.String(), "\n"))
	if decoded["level"] != "critical" {
		t.Fatalf("level = %v", decoded["level"])
	}
}
