package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEventType identifies a credential lifecycle transition.
type AuditEventType string

const (
	TokenFromCache    AuditEventType = "TOKEN_FROM_CACHE"
	TokenRefreshed    AuditEventType = "TOKEN_REFRESHED"
	TokenIssued       AuditEventType = "TOKEN_ISSUED"
	TokenRejected     AuditEventType = "TOKEN_REJECTED"
	AuthorizationSent AuditEventType = "AUTHORIZATION_SENT"
	CredentialCleared AuditEventType = "CREDENTIAL_CLEARED"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	StatusSuccess AuditStatus = "success"
	StatusFailure AuditStatus = "failure"
)

// AuditEvent records one step of the token lifecycle. Secrets never go in Details.
type AuditEvent struct {
	ID           string
	Timestamp    time.Time
	EventType    AuditEventType
	Status       AuditStatus
	Details      map[string]interface{}
	ErrorMessage string
}

// NewAuditEvent creates a new audit event with a generated ID and timestamp
func NewAuditEvent(eventType AuditEventType, status AuditStatus) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
	}
}

// WithDetail adds a single detail entry.
func (e *AuditEvent) WithDetail(key string, value interface{}) *AuditEvent {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithError marks the event as failed.
func (e *AuditEvent) WithError(err error) *AuditEvent {
	if err == nil {
		return e
	}
	e.ErrorMessage = err.Error()
	e.Status = StatusFailure
	return e
}

// Audit writes the event through the logger: failures at warn, the rest at info.
func (l *Logger) Audit(ctx context.Context, e *AuditEvent) {
	fields := []interface{}{
		"audit_id", e.ID,
		"event_type", string(e.EventType),
		"status", string(e.Status),
	}
	for k, v := range e.Details {
		fields = append(fields, k, v)
	}
	if e.ErrorMessage != "" {
		fields = append(fields, "error", e.ErrorMessage)
	}
	if e.Status == StatusFailure {
		l.WarnWithContext(ctx, "audit", fields...)
		return
	}
	l.InfoWithContext(ctx, "audit", fields...)
}
