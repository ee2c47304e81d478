// Package audit records suspicious-activity and boarding-journal events.
package audit

import (
	"context"
	"time"

	"github.com/quillback/liftline/internal/services/party/storage"
)

// Event names written by the party coordinator.
const (
	EventSuspicious      = "suspicious"
	EventBoardingGateway = "boarding_gateway"
	EventBoardingGo      = "boarding_go"
)

// Emitter records audit events. It is nil-safe so callers never guard.
type Emitter struct {
	store storage.AuditStore
	clock func() time.Time
}

// NewEmitter creates an audit emitter over a store.
func NewEmitter(store storage.AuditStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, rec storage.AuditRecord) error {
	if e == nil || e.store == nil {
		return nil
	}
	if rec.Timestamp.IsZero() {
		if e.clock == nil {
			rec.Timestamp = time.Now().UTC()
		} else {
			rec.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendAuditRecord(ctx, rec)
}

// Suspicious records a warning-level suspicious-activity event for a
// participant.
func (e *Emitter) Suspicious(ctx context.Context, participantID, detail string) error {
	return e.Emit(ctx, storage.AuditRecord{
		Severity:      storage.SeverityWarn,
		Event:         EventSuspicious,
		ParticipantID: participantID,
		Detail:        detail,
	})
}

// Journal records an informational boarding-journal event.
func (e *Emitter) Journal(ctx context.Context, event, participantID, detail string) error {
	return e.Emit(ctx, storage.AuditRecord{
		Severity:      storage.SeverityInfo,
		Event:         event,
		ParticipantID: participantID,
		Detail:        detail,
	})
}
