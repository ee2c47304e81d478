// Package nats implements the gateway surface over NATS. Seating is tracked
// in process; boarding and dispatch actions are announced on per-gateway
// subjects so the physical elevator layer can play them out:
//
//	party.board.<gatewayID>     {"participant_id": string, "with_show": bool}
//	party.dispatch.<gatewayID>  {"participant_ids": [string]}
//
// Presence probes use request-reply on presence.ping.<participantID>; any
// reply within the timeout counts as present.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	apperrors "github.com/quillback/liftline/internal/platform/errors"
	"github.com/quillback/liftline/internal/services/party/gateway"
)

const (
	boardSubjectPrefix    = "party.board.%s"
	dispatchSubjectPrefix = "party.dispatch.%s"
	pingSubjectPrefix     = "presence.ping.%s"

	defaultPingTimeout = 250 * time.Millisecond
)

type boardPayload struct {
	ParticipantID string `json:"participant_id"`
	WithShow      bool   `json:"with_show"`
}

type dispatchPayload struct {
	ParticipantIDs []string `json:"participant_ids"`
}

// Gateway is one seat-limited elevator announced over NATS.
type Gateway struct {
	id       string
	capacity int
	conn     *nats.Conn

	mu        sync.Mutex
	occupants map[string]struct{}
}

// NewGateway creates a gateway with a fixed seat count.
func NewGateway(conn *nats.Conn, id string, capacity int) *Gateway {
	return &Gateway{
		id:        id,
		capacity:  capacity,
		conn:      conn,
		occupants: map[string]struct{}{},
	}
}

// ID returns the gateway identifier.
func (g *Gateway) ID() string { return g.id }

// OpenSeats reports how many seats are currently unoccupied.
func (g *Gateway) OpenSeats() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capacity - len(g.occupants)
}

// Occupies reports whether the participant currently holds a seat.
func (g *Gateway) Occupies(participantID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.occupants[participantID]
	return ok
}

// Board seats a participant and announces the boarding.
func (g *Gateway) Board(_ context.Context, participantID string, withShow bool) error {
	g.mu.Lock()
	if _, seated := g.occupants[participantID]; !seated && len(g.occupants) >= g.capacity {
		g.mu.Unlock()
		return apperrors.WithMetadata(apperrors.CodeGroupCapacityExceeded, "no open seats", map[string]string{
			"gateway":     g.id,
			"participant": participantID,
		})
	}
	g.occupants[participantID] = struct{}{}
	g.mu.Unlock()

	g.publish(fmt.Sprintf(boardSubjectPrefix, g.id), boardPayload{
		ParticipantID: participantID,
		WithShow:      withShow,
	})
	return nil
}

// Dispatch announces departure for the listed participants and frees their
// seats. Participants who never boarded are announced anyway; the physical
// layer decides how to resolve them.
func (g *Gateway) Dispatch(_ context.Context, participantIDs []string) error {
	g.mu.Lock()
	for _, id := range participantIDs {
		delete(g.occupants, id)
	}
	g.mu.Unlock()

	g.publish(fmt.Sprintf(dispatchSubjectPrefix, g.id), dispatchPayload{
		ParticipantIDs: participantIDs,
	})
	return nil
}

func (g *Gateway) publish(subject string, payload any) {
	if g.conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal gateway payload subject=%s err=%v", subject, err)
		return
	}
	if err := g.conn.Publish(subject, data); err != nil {
		log.Printf("publish gateway event subject=%s err=%v", subject, err)
	}
}

// Directory is a fixed, offset-ordered set of gateways.
type Directory struct {
	order    []string
	gateways map[string]*Gateway
}

// NewDirectory builds a directory from gateways in destination-offset order.
func NewDirectory(gateways ...*Gateway) *Directory {
	d := &Directory{gateways: map[string]*Gateway{}}
	for _, gw := range gateways {
		d.order = append(d.order, gw.id)
		d.gateways[gw.id] = gw
	}
	return d
}

// ParseDirectory builds a directory from a "id:seats,id:seats" spec string.
func ParseDirectory(conn *nats.Conn, spec string) (*Directory, error) {
	var gateways []*Gateway
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, seats, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("gateway spec %q: want id:seats", entry)
		}
		capacity, err := strconv.Atoi(seats)
		if err != nil || capacity <= 0 {
			return nil, fmt.Errorf("gateway spec %q: bad seat count", entry)
		}
		gateways = append(gateways, NewGateway(conn, strings.TrimSpace(id), capacity))
	}
	if len(gateways) == 0 {
		return nil, fmt.Errorf("gateway spec is empty")
	}
	return NewDirectory(gateways...), nil
}

// Gateway resolves a gateway by id.
func (d *Directory) Gateway(id string) (gateway.Gateway, bool) {
	gw, ok := d.gateways[id]
	if !ok {
		return nil, false
	}
	return gw, true
}

// IDs returns the managed gateway ids in destination-offset order.
func (d *Directory) IDs() []string {
	return append([]string(nil), d.order...)
}

// Presence probes participant liveness with a request-reply ping.
type Presence struct {
	conn    *nats.Conn
	timeout time.Duration
}

// NewPresence creates a ping-based presence probe.
func NewPresence(conn *nats.Conn, timeout time.Duration) *Presence {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return &Presence{conn: conn, timeout: timeout}
}

// Present reports whether anything answered the participant's ping subject.
func (p *Presence) Present(participantID string) bool {
	if p == nil || p.conn == nil {
		return false
	}
	_, err := p.conn.Request(fmt.Sprintf(pingSubjectPrefix, participantID), nil, p.timeout)
	return err == nil
}
