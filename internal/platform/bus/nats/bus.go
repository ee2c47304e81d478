// Package nats adapts a NATS connection to the participant signal bus.
//
// Signals are plain (non-durable) subjects: presence is worthless after the
// fact, so no JetStream retention is involved.
//
//	presence.exit.<participantID>   participant disconnected (empty payload)
//	presence.zone.<participantID>   {"new_zone": int, "old_zone": int}
//	combat.<participantID>          {"joined": bool}
package nats

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/quillback/liftline/internal/platform/bus"
)

const (
	exitSubjectPrefix   = "presence.exit.%s"
	zoneSubjectPrefix   = "presence.zone.%s"
	combatSubjectPrefix = "combat.%s"
)

// Bus is a NATS-backed participant signal bus.
type Bus struct {
	conn *nats.Conn
}

// New wraps an existing NATS connection. The caller keeps ownership of the
// connection's lifecycle.
func New(conn *nats.Conn) *Bus {
	return &Bus{conn: conn}
}

// Connect dials a NATS server and returns a signal bus over the connection.
func Connect(url string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Printf("nats bus error: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Bus{conn: conn}, nil
}

// Close drains the underlying connection.
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.conn.Close()
}

type zonePayload struct {
	NewZone int `json:"new_zone"`
	OldZone int `json:"old_zone"`
}

type combatPayload struct {
	Joined bool `json:"joined"`
}

// SubscribeExit registers a disconnect callback for a participant.
func (b *Bus) SubscribeExit(participantID string, fn func()) bus.Handle {
	subject := fmt.Sprintf(exitSubjectPrefix, participantID)
	sub, err := b.conn.Subscribe(subject, func(*nats.Msg) {
		fn()
	})
	if err != nil {
		log.Printf("nats subscribe %s: %v", subject, err)
		return noopHandle{}
	}
	return subHandle{sub: sub}
}

// SubscribeZoneChange registers a zone-change callback for a participant.
func (b *Bus) SubscribeZoneChange(participantID string, fn func(newZone, oldZone int)) bus.Handle {
	subject := fmt.Sprintf(zoneSubjectPrefix, participantID)
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		var payload zonePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("nats zone payload for %s: %v", participantID, err)
			return
		}
		fn(payload.NewZone, payload.OldZone)
	})
	if err != nil {
		log.Printf("nats subscribe %s: %v", subject, err)
		return noopHandle{}
	}
	return subHandle{sub: sub}
}

// SubscribeCombat registers a combat callback for a participant.
func (b *Bus) SubscribeCombat(participantID string, fn func(joined bool)) bus.Handle {
	subject := fmt.Sprintf(combatSubjectPrefix, participantID)
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		var payload combatPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("nats combat payload for %s: %v", participantID, err)
			return
		}
		fn(payload.Joined)
	})
	if err != nil {
		log.Printf("nats subscribe %s: %v", subject, err)
		return noopHandle{}
	}
	return subHandle{sub: sub}
}

type subHandle struct {
	sub *nats.Subscription
}

func (h subHandle) Cancel() {
	if err := h.sub.Unsubscribe(); err != nil {
		log.Printf("nats unsubscribe %s: %v", h.sub.Subject, err)
	}
}

type noopHandle struct{}

func (noopHandle) Cancel() {}
