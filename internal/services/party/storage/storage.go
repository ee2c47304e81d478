// Package storage declares persistence interfaces for the party service.
package storage

import (
	"context"
	"time"
)

// Audit severities.
const (
	SeverityInfo = "INFO"
	SeverityWarn = "WARN"
)

// AuditRecord is one suspicious-activity or boarding-journal entry.
type AuditRecord struct {
	ID            int64
	Timestamp     time.Time
	Severity      string
	Event         string
	ParticipantID string
	Detail        string
}

// AuditStore persists audit records.
type AuditStore interface {
	AppendAuditRecord(ctx context.Context, rec AuditRecord) error
	ListAuditRecords(ctx context.Context, limit int) ([]AuditRecord, error)
}
