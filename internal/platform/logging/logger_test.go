package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueArgs(t *testing.T) {
	core, observed := observer.New(LevelDebug)
	logger := FromZap(zap.New(core))

	logger.Info("round computed", "round", "R1", "players", 6)

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("entries: got=%d want=1", len(entries))
	}
	entry := entries[0]
	if entry.Message != "round computed" {
		t.Fatalf("message: got=%s", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["round"] != "R1" {
		t.Fatalf("round field: got=%v", fields["round"])
	}
	if fields["players"] != int64(6) {
		t.Fatalf("players field: got=%v", fields["players"])
	}
}

func TestLogger_OddArgsDoNotPanic(t *testing.T) {
	core, observed := observer.New(LevelDebug)
	logger := FromZap(zap.New(core))

	logger.Warn("dangling key", "only_key")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("entries: got=%d want=1", len(entries))
	}
	if _, ok := entries[0].ContextMap()["only_key"]; !ok {
		t.Fatalf("dangling key dropped")
	}
}

func TestLogger_ContextWithoutSpanAddsNoTraceFields(t *testing.T) {
	core, observed := observer.New(LevelDebug)
	logger := FromZap(zap.New(core))

	logger.InfoContext(context.Background(), "no span")

	fields := observed.All()[0].ContextMap()
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("trace_id present without an active span")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("must not panic")
	logger.With("k", "v").Error("still fine")
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync on nil logger: %v", err)
	}
}
