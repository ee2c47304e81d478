// Package gateway declares the external collaborators the party coordinator
// depends on: the capacity-limited gateways themselves and the presence
// directory resolving participant ids to live sessions. Implementations are
// owned by the transport/physical layer.
package gateway

import "context"

// Gateway is one capacity-limited transition point (an elevator).
type Gateway interface {
	// ID returns the gateway identifier.
	ID() string

	// OpenSeats reports how many seats are currently unoccupied.
	OpenSeats() int

	// Occupies reports whether the participant currently holds a seat.
	Occupies(participantID string) bool

	// Board admits a participant to a seat. withShow requests the visible
	// boarding effect used for members following their leader.
	Board(ctx context.Context, participantID string, withShow bool) error

	// Dispatch sends the listed participants to the gateway's configured
	// destination.
	Dispatch(ctx context.Context, participantIDs []string) error
}

// Directory resolves the gateways known to one party host.
type Directory interface {
	// Gateway resolves a gateway by id; ok is false for gateways this
	// party host does not manage.
	Gateway(id string) (Gateway, bool)

	// IDs returns the managed gateway ids in destination-offset order.
	IDs() []string
}

// Presence resolves participant ids to live sessions.
type Presence interface {
	Present(participantID string) bool
}
