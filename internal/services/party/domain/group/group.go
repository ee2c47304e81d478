// Package group defines the boarding-group aggregate and the membership
// registry that tracks which participant belongs to which group.
package group

import (
	"sort"

	apperrors "github.com/quillback/liftline/internal/platform/errors"
)

// DefaultCapacity is the confirmed-member limit used when none is configured.
const DefaultCapacity = 4

// Group is the aggregate owned by a leader: the ordered confirmed-member
// list, the outstanding invitations, and the participants the leader kicked.
// The kicked set is retained so a later re-invite can be told apart from a
// stale accept.
type Group struct {
	Leader   string
	Members  []string // insertion order; the leader is always element 0
	Pending  map[string]struct{}
	Kicked   map[string]struct{}
	Capacity int
}

// New creates a group for a leader with one outstanding invitation.
func New(leader, invitee string, capacity int) *Group {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Group{
		Leader:   leader,
		Members:  []string{leader},
		Pending:  map[string]struct{}{invitee: {}},
		Kicked:   map[string]struct{}{},
		Capacity: capacity,
	}
}

// IsMember reports whether the participant is a confirmed member.
func (g *Group) IsMember(participantID string) bool {
	for _, id := range g.Members {
		if id == participantID {
			return true
		}
	}
	return false
}

// IsPending reports whether the participant has an unanswered invitation.
func (g *Group) IsPending(participantID string) bool {
	_, ok := g.Pending[participantID]
	return ok
}

// IsKicked reports whether the leader previously kicked the participant.
func (g *Group) IsKicked(participantID string) bool {
	_, ok := g.Kicked[participantID]
	return ok
}

// AddPending records an outstanding invitation. Re-inviting a kicked
// participant clears the kicked marker.
func (g *Group) AddPending(participantID string) {
	delete(g.Kicked, participantID)
	if g.IsMember(participantID) {
		return
	}
	g.Pending[participantID] = struct{}{}
}

// AddMember promotes a pending invitee to a confirmed member. It returns a
// capacity error when the group is already full; the caller is expected to
// have checked beforehand, so a trip here indicates an integrity problem.
func (g *Group) AddMember(participantID string) error {
	if len(g.Members) >= g.Capacity {
		return apperrors.WithMetadata(apperrors.CodeGroupCapacityExceeded, "group is full", map[string]string{
			"leader":      g.Leader,
			"participant": participantID,
		})
	}
	delete(g.Pending, participantID)
	if !g.IsMember(participantID) {
		g.Members = append(g.Members, participantID)
	}
	return nil
}

// Drop removes every trace of the participant from members, pending and
// kicked. When kick is set the participant is recorded in the kicked set.
func (g *Group) Drop(participantID string, kick bool) {
	for i, id := range g.Members {
		if id == participantID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			break
		}
	}
	delete(g.Pending, participantID)
	delete(g.Kicked, participantID)
	if kick {
		g.Kicked[participantID] = struct{}{}
	}
}

// MemberCount returns the confirmed-member count.
func (g *Group) MemberCount() int {
	return len(g.Members)
}

// Roster returns copies of the member, pending and kicked lists. Members
// keep insertion order; pending and kicked are sorted for deterministic
// notification payloads.
func (g *Group) Roster() (members, pending, kicked []string) {
	members = append([]string(nil), g.Members...)
	pending = sortedSet(g.Pending)
	kicked = sortedSet(g.Kicked)
	return members, pending, kicked
}

func sortedSet(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
