// Package bus delivers per-participant liveness, location and combat signals.
//
// The party coordinator subscribes to signals for every leader and confirmed
// member; each subscription returns a Handle that must be cancelled when the
// participant leaves, so no callback outlives its group affiliation.
package bus

// Handle is a cancellable subscription to one signal class for one participant.
type Handle interface {
	Cancel()
}

// Bus delivers participant signals to subscribers.
type Bus interface {
	// SubscribeExit registers fn to run when the participant disconnects
	// or otherwise leaves the server.
	SubscribeExit(participantID string, fn func()) Handle

	// SubscribeZoneChange registers fn to run when the participant moves
	// between logical zones.
	SubscribeZoneChange(participantID string, fn func(newZone, oldZone int)) Handle

	// SubscribeCombat registers fn to run when the participant joins
	// (joined=true) or leaves (joined=false) combat.
	SubscribeCombat(participantID string, fn func(joined bool)) Handle
}
