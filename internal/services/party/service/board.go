package service

import (
	"context"
	"fmt"
	"log"

	"github.com/quillback/liftline/internal/services/party/notify"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
)

// verdict is the boarding-gate outcome for one evaluation. The diagnostic
// lists are populated by the gateway collaborator when it can tell which
// members fail its requirements; the gate itself only sizes the group.
type verdict struct {
	code        notify.BoardCode
	failingIDs  []string
	inCombatIDs []string
}

// evaluateBoarding checks whether the leader's group may enter a gateway.
// needsSpace distinguishes the final boarding action, which must fit into
// the seats open right now, from the go pre-check, which does not reserve
// seats yet. Callers hold the coordinator mutex.
func (c *Coordinator) evaluateBoarding(leaderID, gatewayID string, needsSpace bool) verdict {
	if c.gateways == nil {
		return verdict{code: notify.BoardMissing}
	}
	gw, ok := c.gateways.Gateway(gatewayID)
	if !ok {
		return verdict{code: notify.BoardMissing}
	}
	mapped, ok := c.registry.Lookup(leaderID)
	if !ok || mapped != leaderID {
		return verdict{code: notify.BoardMissing}
	}
	g, ok := c.registry.Group(leaderID)
	if !ok {
		return verdict{code: notify.BoardMissing}
	}
	size := g.MemberCount()
	if size > g.Capacity {
		return verdict{code: notify.BoardSpace}
	}
	if needsSpace && size > gw.OpenSeats() {
		return verdict{code: notify.BoardSpace}
	}
	return verdict{code: notify.BoardOkay}
}

// RequestBoard admits the leader's whole group into a gateway directly,
// bypassing the go handshake. The leader boards first without the visible
// boarding effect; the remaining members follow with it.
func (c *Coordinator) RequestBoard(ctx context.Context, leaderID, gatewayID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.evaluateBoarding(leaderID, gatewayID, true)
	if v.code != notify.BoardOkay {
		c.notifier.Send(ctx, leaderID, notify.BoardRejected{
			GatewayID:   gatewayID,
			Code:        v.code,
			FailingIDs:  v.failingIDs,
			InCombatIDs: v.inCombatIDs,
		})
		return
	}

	gw, ok := c.gateways.Gateway(gatewayID)
	if !ok {
		c.notifier.Send(ctx, leaderID, notify.BoardRejected{
			GatewayID: gatewayID,
			Code:      notify.BoardMissing,
		})
		return
	}
	g, _ := c.registry.Group(leaderID)
	members, _, _ := g.Roster()

	if !c.present(leaderID) {
		c.notifier.Send(ctx, leaderID, notify.BoardRejected{
			GatewayID: gatewayID,
			Code:      notify.BoardMissing,
		})
		return
	}
	if err := gw.Board(ctx, leaderID, false); err != nil {
		log.Printf("board leader failed gateway_id=%s leader_id=%s err=%v", gatewayID, leaderID, err)
		c.notifier.Send(ctx, leaderID, notify.BoardRejected{
			GatewayID: gatewayID,
			Code:      notify.BoardMissing,
		})
		return
	}
	for _, memberID := range members {
		if memberID == leaderID {
			continue
		}
		if !c.present(memberID) {
			log.Printf("member absent at boarding gateway_id=%s member_id=%s", gatewayID, memberID)
			continue
		}
		if err := gw.Board(ctx, memberID, true); err != nil {
			log.Printf("board member failed gateway_id=%s member_id=%s err=%v", gatewayID, memberID, err)
		}
	}
	c.audit.Journal(ctx, audit.EventBoardingGateway, leaderID,
		fmt.Sprintf("%s; boarding group %v", gatewayID, members))
}
