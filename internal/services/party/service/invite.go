package service

import (
	"context"
	"fmt"
	"log"

	apperrors "github.com/quillback/liftline/internal/platform/errors"
	"github.com/quillback/liftline/internal/services/party/notify"
)

// Invite issues an invitation from inviter to invitee. An unaffiliated
// inviter becomes the leader of a fresh group; a confirmed member extends
// the leader's existing group.
func (c *Coordinator) Invite(ctx context.Context, inviterID, inviteeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason, rejected := c.inviteeDisqualified(inviteeID); rejected {
		c.rejectInvitation(ctx, inviterID, inviteeID, reason)
		return
	}

	leaderID, affiliated := c.registry.Lookup(inviterID)
	if !affiliated {
		c.createGroup(ctx, inviterID, inviteeID)
		return
	}

	g, ok := c.registry.Group(leaderID)
	if !ok {
		c.audit.Suspicious(ctx, inviterID,
			fmt.Sprintf("indexed to leader %s with no recorded group", leaderID))
		c.registry.Unbind(inviterID)
		return
	}
	if g.MemberCount() >= g.Capacity {
		c.notifier.Send(ctx, inviterID, notify.InviteNotQualified{
			InviteeID: inviteeID,
			Reason:    notify.ReasonGroupFull,
		})
		return
	}
	if g.IsKicked(inviterID) {
		c.rejectInvitation(ctx, inviterID, inviteeID, notify.ReasonInviterKicked)
		return
	}
	if g.IsPending(inviterID) {
		c.rejectInvitation(ctx, inviterID, inviteeID, notify.ReasonInviterPending)
		return
	}

	c.guardDoubleAffiliation(ctx, inviteeID, leaderID)
	g.AddPending(inviteeID)
	c.registry.Bind(inviteeID, leaderID)

	c.notifier.Send(ctx, inviteeID, notify.Invited{LeaderID: leaderID, InviterID: inviterID})
	members, _, _ := g.Roster()
	for _, memberID := range members {
		if memberID == inviterID {
			continue
		}
		c.notifier.Send(ctx, memberID, notify.MemberInvited{
			InviteeID: inviteeID,
			InviterID: inviterID,
		})
	}
}

// CancelInvite withdraws an outstanding invitation. Any affiliated member of
// the invitee's group may cancel, not just the original inviter.
func (c *Coordinator) CancelInvite(ctx context.Context, inviterID, inviteeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	leaderID, ok := c.registry.Lookup(inviterID)
	if !ok {
		return
	}
	g, ok := c.registry.Group(leaderID)
	if !ok || !g.IsPending(inviteeID) {
		return
	}
	c.notifier.Send(ctx, inviteeID, notify.InviteCanceled{})
	c.removeFromGroup(ctx, leaderID, inviteeID, removeOptions{silent: true})
}

// AcceptInvite promotes a pending invitee to a confirmed member.
func (c *Coordinator) AcceptInvite(ctx context.Context, inviteeID, leaderID, inviterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mapped, ok := c.registry.Lookup(inviteeID)
	if !ok {
		c.audit.Suspicious(ctx, inviteeID,
			fmt.Sprintf("accepted an invitation to group %s without being indexed", leaderID))
		return
	}
	if c.registry.HasActiveGroup(inviteeID) {
		c.notifier.Send(ctx, inviteeID, notify.AlreadyInGroup{})
		return
	}
	if mapped != leaderID {
		// Two invitations raced; drop the stale affiliation quietly and
		// honor the one being accepted.
		c.audit.Suspicious(ctx, inviteeID,
			fmt.Sprintf("accepted an invitation to group %s while mapped to group %s", leaderID, mapped))
		c.removeFromGroup(ctx, mapped, inviteeID, removeOptions{silent: true, skipRoster: true})
	}

	g, ok := c.registry.Group(leaderID)
	if !ok || !g.IsPending(inviteeID) {
		c.notifier.Send(ctx, inviteeID, notify.SomethingMissing{})
		return
	}

	if g.MemberCount() >= g.Capacity {
		c.removeFromGroup(ctx, leaderID, inviteeID, removeOptions{silent: true})
		c.notifier.Send(ctx, inviterID, notify.AcceptanceFailed{
			InviteeID: inviteeID,
			Reason:    notify.ReasonGroupFull,
		})
		c.notifier.Send(ctx, inviteeID, notify.GroupFull{})
		return
	}

	c.registry.Bind(inviteeID, leaderID)
	if err := g.AddMember(inviteeID); err != nil {
		// The capacity check above passed under the same lock, so a trip
		// here means the group mutated out from under the coordinator.
		if apperrors.IsCode(err, apperrors.CodeGroupCapacityExceeded) {
			c.audit.Suspicious(ctx, inviteeID,
				fmt.Sprintf("promoted past capacity in group %s", leaderID))
		}
		log.Printf("add member failed leader_id=%s invitee_id=%s code=%s err=%v",
			leaderID, inviteeID, apperrors.GetCode(err), err)
		c.registry.Unbind(inviteeID)
		return
	}
	c.watch(inviteeID)
	c.notifier.Send(ctx, inviterID, notify.InviteAccepted{InviteeID: inviteeID})
	c.broadcastRoster(ctx, leaderID)
}

// RejectInvite declines an outstanding invitation and tells the inviter.
func (c *Coordinator) RejectInvite(ctx context.Context, inviteeID, leaderID, inviterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mapped, ok := c.registry.Lookup(inviteeID)
	if !ok || mapped != leaderID {
		return
	}
	g, ok := c.registry.Group(leaderID)
	if !ok || !g.IsPending(inviteeID) {
		return
	}
	c.removeFromGroup(ctx, leaderID, inviteeID, removeOptions{silent: true})
	c.notifier.Send(ctx, inviterID, notify.InviteDeclined{InviteeID: inviteeID})
}

// inviteeDisqualified runs the invitee-side checks shared by every invite.
func (c *Coordinator) inviteeDisqualified(inviteeID string) (notify.Reason, bool) {
	switch {
	case c.registry.HasActiveGroup(inviteeID):
		return notify.ReasonDifferentGroup, true
	case c.registry.HasPendingInvite(inviteeID):
		return notify.ReasonPendingInvite, true
	case c.occupiesAnyGateway(inviteeID):
		return notify.ReasonInElevator, true
	}
	return "", false
}

func (c *Coordinator) rejectInvitation(ctx context.Context, inviterID, inviteeID string, reason notify.Reason) {
	c.notifier.Send(ctx, inviterID, notify.InviteNotQualified{
		InviteeID: inviteeID,
		Reason:    reason,
	})
	c.notifier.Send(ctx, inviteeID, notify.InvitationFailed{InviterID: inviterID})
}

// createGroup starts a new group led by the inviter with one outstanding
// invitation. Callers hold the coordinator mutex.
func (c *Coordinator) createGroup(ctx context.Context, leaderID, inviteeID string) {
	c.guardDoubleAffiliation(ctx, inviteeID, leaderID)
	c.registry.Create(leaderID, inviteeID)
	c.watch(leaderID)
	c.notifier.Send(ctx, inviteeID, notify.Invited{LeaderID: leaderID, InviterID: leaderID})
}

// guardDoubleAffiliation self-heals an invitee who is still indexed somewhere
// despite passing the disqualification checks. Callers hold the mutex.
func (c *Coordinator) guardDoubleAffiliation(ctx context.Context, inviteeID, leaderID string) {
	mapped, indexed := c.registry.Lookup(inviteeID)
	if !indexed || mapped == leaderID {
		return
	}
	c.audit.Suspicious(ctx, inviteeID,
		fmt.Sprintf("invited into group %s while mapped to group %s", leaderID, mapped))
	c.removeFromGroup(ctx, mapped, inviteeID, removeOptions{silent: true, skipRoster: true})
}
