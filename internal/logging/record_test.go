package logging_test

import (
	"testing"

	"radar/internal/logging"
)

func TestRecordPreservesInsertionOrder(t *testing.T) {
	rec := logging.NewRecord("hello",
		logging.String("b", "2"),
		logging.String("a", "1"),
		logging.String("c", "3"),
	)
	keys := make([]string, 0, rec.Len())
	for _, f := range rec.Fields() {
		keys = append(keys, f.Key)
	}
	want := []string{"event", "b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("got keys %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got keys %v, want %v", keys, want)
		}
	}
}

func TestRecordSetReplacesInPlace(t *testing.T) {
	rec := logging.NewRecord("hello", logging.Int("n", 1), logging.String("s", "x"))
	rec.Set("n", 2)
	if rec.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", rec.Len())
	}
	if rec.Fields()[1].Key != "n" {
		t.Fatalf("replaced field moved: %v", rec.Fields())
	}
	if v, _ := rec.Get("n"); v != 2 {
		t.Fatalf("Get(n) = %v, want 2", v)
	}
}

func TestRecordDelete(t *testing.T) {
	rec := logging.NewRecord("hello", logging.Int("n", 1))
	if !rec.Delete("n") {
		t.Fatal("expected Delete to report presence")
	}
	if rec.Has("n") {
		t.Fatal("field still present after Delete")
	}
	if rec.Delete("n") {
		t.Fatal("second Delete should report absence")
	}
}

func TestRecordEvent(t *testing.T) {
	rec := logging.NewRecord("the message")
	if rec.Event() != "the message" {
		t.Fatalf("Event() = %q", rec.Event())
	}
}
