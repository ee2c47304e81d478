package service

import (
	"context"
	"fmt"
	"log"

	"github.com/quillback/liftline/internal/services/party/notify"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
)

// checkGoRequirements runs the shared pre-check of both go phases. It
// reports whether the phase may proceed; on failure the leader has already
// been told why. Callers hold the coordinator mutex.
func (c *Coordinator) checkGoRequirements(ctx context.Context, leaderID, gatewayID string) bool {
	v := c.evaluateBoarding(leaderID, gatewayID, false)
	if v.code != notify.BoardOkay {
		c.notifier.Send(ctx, leaderID, notify.GoRejected{
			GatewayID:   gatewayID,
			Code:        v.code,
			FailingIDs:  v.failingIDs,
			InCombatIDs: v.inCombatIDs,
		})
		return false
	}
	if gw, ok := c.gateways.Gateway(gatewayID); ok && gw.Occupies(leaderID) {
		c.audit.Suspicious(ctx, leaderID, "pressed the go button while inside the elevator")
		return false
	}
	return true
}

// RequestGoFirst is phase one of the go handshake: the leader probes
// eligibility and is acknowledged alone. Nothing group-wide happens yet.
func (c *Coordinator) RequestGoFirst(ctx context.Context, leaderID, gatewayID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.checkGoRequirements(ctx, leaderID, gatewayID) {
		return
	}
	c.notifier.Send(ctx, leaderID, notify.GoFirstAccepted{GatewayID: gatewayID})
}

// RequestGoSecond is phase two: the leader confirms, every confirmed member
// starts their pre-show, and a dispatch job is scheduled carrying the member
// list captured now. At most one dispatch job per group may be outstanding.
func (c *Coordinator) RequestGoSecond(ctx context.Context, leaderID, gatewayID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, outstanding := c.pendingDispatch[leaderID]; outstanding {
		c.audit.Suspicious(ctx, leaderID, "confirmed go with a dispatch already scheduled")
		c.notifier.Send(ctx, leaderID, notify.GoRejected{
			GatewayID: gatewayID,
			Code:      notify.BoardDispatchPending,
		})
		return
	}
	if !c.checkGoRequirements(ctx, leaderID, gatewayID) {
		return
	}

	g, ok := c.registry.Group(leaderID)
	if !ok {
		return
	}
	captured, _, _ := g.Roster()
	for _, memberID := range captured {
		c.notifier.Send(ctx, memberID, notify.GoSecondAccepted{GatewayID: gatewayID})
	}
	c.pendingDispatch[leaderID] = c.scheduler.Schedule(c.dispatchDelay, func() {
		c.dispatchCaptured(leaderID, gatewayID, captured)
	})
}

// dispatchCaptured is the deferred dispatch job body. Membership may have
// changed since scheduling; discrepancies are audited but the captured list
// is forwarded to the gateway regardless.
func (c *Coordinator) dispatchCaptured(leaderID, gatewayID string, captured []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := context.Background()
	if _, outstanding := c.pendingDispatch[leaderID]; !outstanding && c.cancelDispatchOnDissolve {
		// Dissolve cleared the entry after the timer fired but before this
		// job took the mutex; Cancel came too late to stop it, so honor the
		// cancellation here.
		return
	}
	delete(c.pendingDispatch, leaderID)

	if len(captured) == 0 {
		return
	}
	v := c.evaluateBoarding(captured[0], gatewayID, false)
	if v.code != notify.BoardOkay {
		c.audit.Suspicious(ctx, captured[0],
			fmt.Sprintf("dispatch check failed with code %s for gateway %s", v.code, gatewayID))
	}
	for _, id := range v.inCombatIDs {
		c.audit.Suspicious(ctx, id,
			fmt.Sprintf("in combat at dispatch time for gateway %s", gatewayID))
	}

	gw, ok := c.gateways.Gateway(gatewayID)
	if !ok {
		log.Printf("dispatch gateway vanished gateway_id=%s leader_id=%s", gatewayID, leaderID)
		return
	}
	c.audit.Journal(ctx, audit.EventBoardingGo, leaderID,
		fmt.Sprintf("%s; sending avatars %v", gatewayID, captured))
	if err := gw.Dispatch(ctx, captured); err != nil {
		log.Printf("dispatch failed gateway_id=%s leader_id=%s err=%v", gatewayID, leaderID, err)
	}
}

// InformDestinationChange broadcasts the leader's destination pick to the
// other members. An out-of-range offset is a protocol violation: audited,
// no state change, no reply.
func (c *Coordinator) InformDestinationChange(ctx context.Context, leaderID string, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gateways == nil || offset < 0 || offset >= len(c.gateways.IDs()) {
		c.audit.Suspicious(ctx, leaderID,
			fmt.Sprintf("destination offset %d out of range", offset))
		return
	}
	g, ok := c.registry.Group(leaderID)
	if !ok {
		return
	}
	members, _, _ := g.Roster()
	for _, memberID := range members {
		if memberID == leaderID {
			continue
		}
		c.notifier.Send(ctx, memberID, notify.DestinationChanged{Offset: offset})
	}
}
