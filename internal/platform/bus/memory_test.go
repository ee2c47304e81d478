package bus

import "testing"

func TestMemoryDeliversSignals(t *testing.T) {
	m := NewMemory()

	var exits int
	var gotNew, gotOld int
	var combatJoined bool

	m.SubscribeExit("av-1", func() { exits++ })
	m.SubscribeZoneChange("av-1", func(newZone, oldZone int) {
		gotNew, gotOld = newZone, oldZone
	})
	m.SubscribeCombat("av-1", func(joined bool) { combatJoined = joined })

	m.PublishExit("av-1")
	m.PublishZoneChange("av-1", 2200, 2100)
	m.PublishCombat("av-1", true)

	if exits != 1 {
		t.Fatalf("expected 1 exit delivery, got %d", exits)
	}
	if gotNew != 2200 || gotOld != 2100 {
		t.Fatalf("expected zone change 2200/2100, got %d/%d", gotNew, gotOld)
	}
	if !combatJoined {
		t.Fatal("expected combat join delivery")
	}
}

func TestMemoryDoesNotCrossParticipants(t *testing.T) {
	m := NewMemory()
	var fired bool
	m.SubscribeExit("av-1", func() { fired = true })

	m.PublishExit("av-2")
	if fired {
		t.Fatal("signal for av-2 reached av-1 subscriber")
	}
}

func TestMemoryCancelStopsDelivery(t *testing.T) {
	m := NewMemory()
	var fired bool
	handle := m.SubscribeExit("av-1", func() { fired = true })

	handle.Cancel()
	m.PublishExit("av-1")

	if fired {
		t.Fatal("cancelled subscription still fired")
	}
	if m.SubscriberCount("av-1") != 0 {
		t.Fatalf("expected no live subscriptions, got %d", m.SubscriberCount("av-1"))
	}
}
