package logging_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"radar/internal/logging"
)

// Setup touches process-wide state (the singleton and the slog
// default); this test owns both assertions so the package runs it
// exactly once.
func TestSetupIsIdempotentAndBridgesLegacyCalls(t *testing.T) {
	var buf bytes.Buffer
	first := logging.Setup(logging.Config{JSONFormat: true, Sink: &buf})
	second := logging.Setup(logging.Config{JSONFormat: false})

	if first != second {
		t.Fatal("repeated Setup must reuse the existing system")
	}
	if logging.Default() != first {
		t.Fatal("Default must return the configured system")
	}

	logging.GetLogger("radar.main").Info("native path")

	// The stdlib log package routes through the installed slog default
	// and therefore through the same pipeline.
	log.Print("legacy path")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines on the shared sink, got %q", buf.String())
	}
	native := parseLine(t, lines[0])
	legacy := parseLine(t, lines[1])
	if native["event"] != "native path" {
		t.Fatalf("native event = %v", native["event"])
	}
	if legacy["event"] != "legacy path" {
		t.Fatalf("legacy event = %v", legacy["event"])
	}
	if legacy["logger"] != "root" {
		t.Fatalf("legacy logger = %v", legacy["logger"])
	}
	if native["process_id"] != legacy["process_id"] {
		t.Fatal("paths disagree on process_id")
	}
}
