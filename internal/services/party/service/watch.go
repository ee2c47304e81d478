package service

import (
	"context"
	"log"
)

// watch subscribes the coordinator to the participant's liveness, location
// and combat signals. The handles are kept so teardown is mechanical.
// Callers hold the coordinator mutex.
func (c *Coordinator) watch(participantID string) {
	if c.bus == nil {
		return
	}
	if _, ok := c.watches[participantID]; ok {
		return
	}
	id := participantID
	c.watches[id] = append(c.watches[id],
		c.bus.SubscribeExit(id, func() {
			c.handleExit(id)
		}),
		c.bus.SubscribeZoneChange(id, func(newZone, oldZone int) {
			c.handleZoneChange(id, newZone, oldZone)
		}),
		c.bus.SubscribeCombat(id, func(joined bool) {
			c.handleCombat(id, joined)
		}),
	)
}

// unwatch cancels every subscription held for the participant. Callers hold
// the coordinator mutex.
func (c *Coordinator) unwatch(participantID string) {
	for _, handle := range c.watches[participantID] {
		handle.Cancel()
	}
	delete(c.watches, participantID)
}

// handleExit removes a disconnected participant from their group.
func (c *Coordinator) handleExit(participantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	leaderID, ok := c.registry.Lookup(participantID)
	if !ok {
		return
	}
	log.Printf("participant exit participant_id=%s leader_id=%s", participantID, leaderID)
	c.removeFromGroup(context.Background(), leaderID, participantID, removeOptions{})
}

// handleZoneChange removes a participant who moved outside the group's
// visible-zone set. Moves within the visible set keep the affiliation.
func (c *Coordinator) handleZoneChange(participantID string, newZone, oldZone int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, visible := c.visibleZones[newZone]; visible {
		if _, ok := c.registry.Lookup(participantID); ok {
			log.Printf("participant stayed in visible zones participant_id=%s zone=%d", participantID, newZone)
		}
		return
	}

	leaderID, ok := c.registry.Lookup(participantID)
	if !ok {
		return
	}
	log.Printf("participant left visible zones participant_id=%s new_zone=%d old_zone=%d", participantID, newZone, oldZone)
	c.removeFromGroup(context.Background(), leaderID, participantID, removeOptions{})
}

// handleCombat observes combat transitions. No membership change today;
// dispatch-time combat checks belong to the gateway collaborator.
func (c *Coordinator) handleCombat(participantID string, joined bool) {
	log.Printf("participant combat participant_id=%s joined=%t", participantID, joined)
}
