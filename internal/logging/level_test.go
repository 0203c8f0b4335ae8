package logging_test

import (
	"testing"

	"radar/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{input: "debug", want: logging.LevelDebug},
		{input: "INFO", want: logging.LevelInfo},
		{input: "", want: logging.LevelInfo},
		{input: "warn", want: logging.LevelWarning},
		{input: "warning", want: logging.LevelWarning},
		{input: "error", want: logging.LevelError},
		{input: "fatal", want: logging.LevelCritical},
		{input: "critical", want: logging.LevelCritical},
		{input: "notset", want: logging.LevelNotSet},
		{input: "verbose", wantErr: true},
	}
	for _, tc := range cases {
		got, err := logging.ParseLevel(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	ordered := []logging.Level{
		logging.LevelNotSet,
		logging.LevelDebug,
		logging.LevelInfo,
		logging.LevelWarning,
		logging.LevelError,
		logging.LevelCritical,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Fatalf("expected %v < %v", ordered[i-1], ordered[i])
		}
	}
}

func TestLevelString(t *testing.T) {
	if got := logging.LevelCritical.String(); got != "critical" {
		t.Fatalf("LevelCritical renders %q, want critical", got)
	}
	if got := logging.LevelWarning.String(); got != "warning" {
		t.Fatalf("LevelWarning renders %q, want warning", got)
	}
}
