package group

import (
	"fmt"

	apperrors "github.com/quillback/liftline/internal/platform/errors"
)

// Registry is the membership index plus the live group aggregates. It maps
// every affiliated participant (leader, confirmed member or pending invitee)
// to the leader of the group holding them. The registry is not safe for
// concurrent use; the coordinator serializes all access.
type Registry struct {
	capacity int
	index    map[string]string
	groups   map[string]*Group
}

// NewRegistry creates an empty registry with a fixed group capacity.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		index:    map[string]string{},
		groups:   map[string]*Group{},
	}
}

// Capacity returns the confirmed-member limit applied to every group.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Lookup resolves a participant to the leader of the group holding them.
func (r *Registry) Lookup(participantID string) (string, bool) {
	leader, ok := r.index[participantID]
	return leader, ok
}

// Bind maps a participant to a leader.
func (r *Registry) Bind(participantID, leaderID string) {
	r.index[participantID] = leaderID
}

// Unbind removes a participant from the index. Unbinding an unknown
// participant is a no-op.
func (r *Registry) Unbind(participantID string) {
	delete(r.index, participantID)
}

// Group returns the aggregate owned by a leader.
func (r *Registry) Group(leaderID string) (*Group, bool) {
	g, ok := r.groups[leaderID]
	return g, ok
}

// Create starts a new group for a leader with one outstanding invitation and
// binds both participants.
func (r *Registry) Create(leaderID, inviteeID string) *Group {
	g := New(leaderID, inviteeID, r.capacity)
	r.groups[leaderID] = g
	r.index[leaderID] = leaderID
	r.index[inviteeID] = leaderID
	return g
}

// Remove deletes a group aggregate. Callers unbind the affected participants.
func (r *Registry) Remove(leaderID string) {
	delete(r.groups, leaderID)
}

// HasActiveGroup reports whether the participant is a confirmed member of
// the group it is mapped to.
func (r *Registry) HasActiveGroup(participantID string) bool {
	leader, ok := r.index[participantID]
	if !ok {
		return false
	}
	g, ok := r.groups[leader]
	return ok && g.IsMember(participantID)
}

// HasPendingInvite reports whether the participant has an unanswered
// invitation in the group it is mapped to.
func (r *Registry) HasPendingInvite(participantID string) bool {
	leader, ok := r.index[participantID]
	if !ok {
		return false
	}
	g, ok := r.groups[leader]
	return ok && g.IsPending(participantID)
}

// Validate checks the index/aggregate agreement invariants. Tests call it
// after every mutation sequence.
func (r *Registry) Validate() error {
	for participantID, leaderID := range r.index {
		g, ok := r.groups[leaderID]
		if !ok {
			return apperrors.New(apperrors.CodeGroupNotFound,
				fmt.Sprintf("participant %s indexed to missing group %s", participantID, leaderID))
		}
		member := g.IsMember(participantID)
		pending := g.IsPending(participantID)
		if member == pending {
			return apperrors.New(apperrors.CodeGroupAffiliationConflict,
				fmt.Sprintf("participant %s must be exactly one of member/pending in group %s", participantID, leaderID))
		}
	}
	for leaderID, g := range r.groups {
		if g.MemberCount() > g.Capacity {
			return apperrors.New(apperrors.CodeGroupCapacityExceeded,
				fmt.Sprintf("group %s exceeds capacity", leaderID))
		}
		if len(g.Members) == 0 || g.Members[0] != leaderID {
			return apperrors.New(apperrors.CodeGroupAffiliationConflict,
				fmt.Sprintf("group %s does not have its leader as first member", leaderID))
		}
		for _, id := range g.Members {
			if mapped, ok := r.index[id]; !ok || mapped != leaderID {
				return apperrors.New(apperrors.CodeGroupAffiliationConflict,
					fmt.Sprintf("member %s of group %s is not indexed to it", id, leaderID))
			}
		}
		for id := range g.Pending {
			if mapped, ok := r.index[id]; !ok || mapped != leaderID {
				return apperrors.New(apperrors.CodeGroupAffiliationConflict,
					fmt.Sprintf("invitee %s of group %s is not indexed to it", id, leaderID))
			}
		}
	}
	return nil
}
