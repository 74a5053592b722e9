package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"civicdesk.org/internal/auth"
	"civicdesk.org/internal/obs"
)

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	prev := obs.Logger()
	obs.SetLogger(zap.New(core))
	t.Cleanup(func() { obs.SetLogger(prev) })
	return logs
}

func TestLogEvent(t *testing.T) {
	logs := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = auth.ContextWithUser(ctx, auth.User{ID: "user-42", Role: auth.RoleAdmin})

	if err := LogEvent(ctx, "complaint.responded", map[string]any{"complaint_id": "c-1"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["type"] != "audit" {
		t.Fatalf("type = %v", fields["type"])
	}
	if fields["event"] != "complaint.responded" {
		t.Fatalf("event = %v", fields["event"])
	}
	if fields["request_id"] != "req-123" {
		t.Fatalf("request_id = %v", fields["request_id"])
	}
	if fields["user_id"] != "user-42" {
		t.Fatalf("user_id = %v", fields["user_id"])
	}
	if fields["role"] != auth.RoleAdmin {
		t.Fatalf("role = %v", fields["role"])
	}
	payload, ok := fields["fields"].(map[string]any)
	if !ok || payload["complaint_id"] != "c-1" {
		t.Fatalf("fields payload = %v", fields["fields"])
	}
}

func TestLogEventWithoutContext(t *testing.T) {
	logs := captureLogs(t)

	if err := LogEvent(context.Background(), "auth.logout", nil); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	fields := logs.All()[0].ContextMap()
	if _, present := fields["request_id"]; present {
		t.Fatal("unexpected request_id")
	}
	if _, present := fields["user_id"]; present {
		t.Fatal("unexpected user_id")
	}
}

func TestLogEventRequiresName(t *testing.T) {
	captureLogs(t)

	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}
