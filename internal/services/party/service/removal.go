package service

import (
	"context"

	"github.com/quillback/liftline/internal/services/party/notify"
)

// removeOptions tune the shared removal path.
type removeOptions struct {
	// kick records the target in the group's kicked set.
	kick bool
	// silent suppresses notifications addressed to the target, for callers
	// that message the target themselves (cancel, decline, full-group
	// accept) or must not message it at all (double-affiliation heal).
	silent bool
	// skipRoster suppresses the surviving-group roster broadcast. Only the
	// double-affiliation self-heal sets it: the stale group must not be
	// re-notified while the accepted invitation proceeds.
	skipRoster bool
}

// Kick removes a member at the leader's request. Only the leader of the
// target's own group may kick.
func (c *Coordinator) Kick(ctx context.Context, leaderID, targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mapped, ok := c.registry.Lookup(targetID)
	if !ok || mapped != leaderID {
		return
	}
	c.removeFromGroup(ctx, leaderID, targetID, removeOptions{kick: true})
	c.notifier.Send(ctx, targetID, notify.Kicked{LeaderID: leaderID})
}

// Leave removes the calling member from their group. A second Leave for an
// already-departed participant is a no-op.
func (c *Coordinator) Leave(ctx context.Context, memberID, leaderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mapped, ok := c.registry.Lookup(memberID)
	if !ok || mapped != leaderID {
		return
	}
	c.removeFromGroup(ctx, leaderID, memberID, removeOptions{})
}

// removeFromGroup is the shared removal path behind kick, leave, cancel and
// involuntary removal. Callers hold the coordinator mutex.
//
// The target is unbound from the index at the end regardless of which branch
// ran, as an idempotent safety net.
func (c *Coordinator) removeFromGroup(ctx context.Context, leaderID, targetID string, opts removeOptions) {
	defer c.registry.Unbind(targetID)

	if _, ok := c.registry.Lookup(leaderID); !ok {
		// The group is already gone; resolve the straggler alone.
		if !opts.silent {
			c.notifier.Send(ctx, targetID, notify.GroupDissolved{
				TriggerID: targetID,
				LeaderID:  leaderID,
				WasKick:   opts.kick,
			})
		}
		return
	}

	c.unwatch(targetID)

	g, ok := c.registry.Group(leaderID)
	if !ok {
		return
	}
	g.Drop(targetID, opts.kick)

	if targetID == leaderID || g.MemberCount() < 2 {
		c.dissolve(ctx, leaderID, targetID, opts)
		return
	}

	if !opts.skipRoster {
		c.broadcastRoster(ctx, leaderID)
	}
}

// dissolve tears the group down: every remaining member and pending invitee
// is unbound and unwatched, pending invitees learn their invitation died,
// and the former members receive the dissolve notice with the trigger
// listed first. Callers hold the coordinator mutex.
func (c *Coordinator) dissolve(ctx context.Context, leaderID, triggerID string, opts removeOptions) {
	g, ok := c.registry.Group(leaderID)
	if !ok {
		return
	}
	members, pending, _ := g.Roster()

	c.registry.Unbind(leaderID)
	for _, inviteeID := range pending {
		c.registry.Unbind(inviteeID)
		if !opts.silent || inviteeID != triggerID {
			c.notifier.Send(ctx, inviteeID, notify.InviteCanceled{})
		}
	}
	for _, memberID := range members {
		c.registry.Unbind(memberID)
		c.unwatch(memberID)
	}
	c.registry.Remove(leaderID)

	if token, outstanding := c.pendingDispatch[leaderID]; outstanding && c.cancelDispatchOnDissolve {
		token.Cancel()
		delete(c.pendingDispatch, leaderID)
	}

	former := append([]string{triggerID}, members...)
	dissolved := notify.GroupDissolved{
		TriggerID:     triggerID,
		LeaderID:      leaderID,
		FormerMembers: former,
		WasKick:       opts.kick,
	}
	for _, id := range former {
		if opts.silent && id == triggerID {
			continue
		}
		c.notifier.Send(ctx, id, dissolved)
	}
}

// broadcastRoster sends the current roster to every confirmed member and
// pending invitee of a group. Callers hold the coordinator mutex.
func (c *Coordinator) broadcastRoster(ctx context.Context, leaderID string) {
	g, ok := c.registry.Group(leaderID)
	if !ok {
		return
	}
	members, pending, kicked := g.Roster()
	roster := notify.RosterUpdated{
		LeaderID: leaderID,
		Members:  members,
		Pending:  pending,
		Kicked:   kicked,
	}
	for _, id := range members {
		c.notifier.Send(ctx, id, roster)
	}
	for _, id := range pending {
		c.notifier.Send(ctx, id, roster)
	}
}
