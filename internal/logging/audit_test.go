package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestAuditEventSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf))
	ctx := WithCorrelationID(context.Background(), "cid")

	event := NewAuditEvent(TokenRefreshed, StatusSuccess).WithDetail("expires_in", 3600)
	logger.Audit(ctx, event)

	entry := decodeLastLog(t, buf.Bytes())
	if entry["level"] != "info" || entry["correlation_id"] != "cid" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	fields := entry["fields"].(map[string]interface{})
	if fields["event_type"] != "TOKEN_REFRESHED" || fields["status"] != "success" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if int(fields["expires_in"].(float64)) != 3600 {
		t.Fatalf("expected detail in fields: %v", fields)
	}
	if fields["audit_id"] == "" {
		t.Fatalf("expected audit id")
	}
}

func TestAuditEventFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WithOutput(&buf))

	event := NewAuditEvent(TokenRejected, StatusSuccess).WithError(errors.New("status 400"))
	if event.Status != StatusFailure {
		t.Fatalf("expected failure status after WithError")
	}
	logger.Audit(context.Background(), event)

	entry := decodeLastLog(t, buf.Bytes())
	if entry["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", entry["level"])
	}
	fields := entry["fields"].(map[string]interface{})
	if fields["error"] != "status 400" {
		t.Fatalf("unexpected error field: %v", fields["error"])
	}

	if NewAuditEvent(TokenIssued, StatusSuccess).WithError(nil).Status != StatusSuccess {
		t.Fatalf("nil error must not flip status")
	}
}
