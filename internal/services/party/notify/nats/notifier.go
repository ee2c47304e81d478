// Package nats publishes party notifications over NATS. Each participant
// listens on party.notify.<participantID>; payloads are JSON envelopes
// carrying the notification kind and body.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/quillback/liftline/internal/platform/id"
	"github.com/quillback/liftline/internal/services/party/notify"
)

const notifySubjectPrefix = "party.notify.%s"

// Envelope is the wire form of one notification. ID is unique per message so
// receivers can deduplicate across reconnects.
type Envelope struct {
	ID      string          `json:"id"`
	Kind    notify.Kind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Notifier publishes notifications to per-participant NATS subjects.
type Notifier struct {
	conn *nats.Conn
}

// New wraps a NATS connection as a notifier.
func New(conn *nats.Conn) *Notifier {
	return &Notifier{conn: conn}
}

// Send publishes one notification. Delivery is best-effort; failures are
// logged, never returned, matching the fire-and-forget notifier contract.
func (n *Notifier) Send(_ context.Context, to string, payload notify.Notification) {
	if n == nil || n.conn == nil {
		return
	}
	data, err := Encode(payload)
	if err != nil {
		log.Printf("encode notification kind=%s to=%s err=%v", payload.Kind(), to, err)
		return
	}
	subject := fmt.Sprintf(notifySubjectPrefix, to)
	if err := n.conn.Publish(subject, data); err != nil {
		log.Printf("publish notification subject=%s err=%v", subject, err)
	}
}

// Encode serializes a notification into its envelope form.
func Encode(payload notify.Notification) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	msgID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}
	return json.Marshal(Envelope{ID: msgID, Kind: payload.Kind(), Payload: body})
}

// Decode parses an envelope produced by Encode.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Kind == "" {
		return Envelope{}, fmt.Errorf("envelope missing kind")
	}
	return env, nil
}
