package service

import (
	"context"
	"testing"

	"github.com/quillback/liftline/internal/services/party/notify"
	"github.com/quillback/liftline/internal/services/party/observability/audit"
)

func TestGoFirstAcknowledgesLeaderAlone(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	ctx := context.Background()

	f.c.RequestGoFirst(ctx, "A", "gw-1")

	n, ok := f.notes.lastTo("A")
	if !ok {
		t.Fatal("expected acknowledgement to leader")
	}
	if ack, ok := n.(notify.GoFirstAccepted); !ok || ack.GatewayID != "gw-1" {
		t.Fatalf("expected GoFirstAccepted, got %#v", n)
	}
	if len(f.notes.to("B")) != 0 {
		t.Fatal("phase one must not touch the rest of the group")
	}
	if f.sched.pendingCount() != 0 {
		t.Fatal("phase one must not schedule a dispatch")
	}
}

func TestGoFirstRejectedForUnknownGateway(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	ctx := context.Background()

	f.c.RequestGoFirst(ctx, "A", "gw-404")

	n, _ := f.notes.lastTo("A")
	if rej, ok := n.(notify.GoRejected); !ok || rej.Code != notify.BoardMissing {
		t.Fatalf("expected Missing rejection, got %#v", n)
	}
}

func TestGoIgnoredWhenLeaderAlreadyInside(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	f.gw.occupants["A"] = true
	ctx := context.Background()

	f.c.RequestGoFirst(ctx, "A", "gw-1")

	if len(f.notes.sent) != 0 {
		t.Fatalf("expected silent drop, got %v", f.notes.sent)
	}
	if f.audits.eventCount(audit.EventSuspicious) == 0 {
		t.Fatal("expected a suspicious-activity record")
	}
}

func TestGoSecondNotifiesMembersAndSchedulesDispatch(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B", "C")
	ctx := context.Background()

	f.c.RequestGoSecond(ctx, "A", "gw-1")

	for _, id := range []string{"A", "B", "C"} {
		n, ok := f.notes.lastTo(id)
		if !ok {
			t.Fatalf("expected go notice to %s", id)
		}
		if ack, ok := n.(notify.GoSecondAccepted); !ok || ack.GatewayID != "gw-1" {
			t.Fatalf("expected GoSecondAccepted to %s, got %#v", id, n)
		}
	}
	if f.sched.pendingCount() != 1 {
		t.Fatalf("expected one scheduled dispatch, got %d", f.sched.pendingCount())
	}
	if len(f.gw.dispatched) != 0 {
		t.Fatal("dispatch must wait for the timer")
	}

	f.sched.fire()

	if len(f.gw.dispatched) != 1 {
		t.Fatalf("expected one dispatch, got %v", f.gw.dispatched)
	}
	got := f.gw.dispatched[0]
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Fatalf("expected dispatch of [A B C], got %v", got)
	}
	if f.audits.eventCount(audit.EventBoardingGo) != 1 {
		t.Fatal("expected a go journal entry")
	}
}

func TestDispatchForwardsCapturedListDespiteDeparture(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B", "C")
	ctx := context.Background()

	f.c.RequestGoSecond(ctx, "A", "gw-1")
	f.c.Leave(ctx, "B", "A")
	f.sched.fire()

	if len(f.gw.dispatched) != 1 {
		t.Fatalf("expected one dispatch, got %v", f.gw.dispatched)
	}
	got := f.gw.dispatched[0]
	if len(got) != 3 || got[1] != "B" {
		t.Fatalf("expected the captured list including the departed member, got %v", got)
	}
}

func TestSecondGoSecondRejectedWhileDispatchOutstanding(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	ctx := context.Background()
	f.c.RequestGoSecond(ctx, "A", "gw-1")
	f.notes.reset()

	f.c.RequestGoSecond(ctx, "A", "gw-1")

	n, _ := f.notes.lastTo("A")
	if rej, ok := n.(notify.GoRejected); !ok || rej.Code != notify.BoardDispatchPending {
		t.Fatalf("expected dispatch-pending rejection, got %#v", n)
	}
	if f.sched.pendingCount() != 1 {
		t.Fatalf("expected a single scheduled dispatch, got %d", f.sched.pendingCount())
	}
	if len(f.notes.to("B")) != 0 {
		t.Fatal("the rejected retry must not re-notify members")
	}
}

func TestGoSecondAllowedAgainAfterDispatchFires(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	ctx := context.Background()
	f.c.RequestGoSecond(ctx, "A", "gw-1")
	f.sched.fire()
	f.notes.reset()

	f.c.RequestGoSecond(ctx, "A", "gw-1")

	if n, _ := f.notes.lastTo("A"); n == nil {
		t.Fatal("expected a fresh go handshake to proceed")
	} else if _, ok := n.(notify.GoSecondAccepted); !ok {
		t.Fatalf("expected GoSecondAccepted, got %#v", n)
	}
	if len(f.gw.dispatched) != 1 {
		t.Fatalf("expected only the first dispatch so far, got %v", f.gw.dispatched)
	}
}

func TestDissolveCancelsOutstandingDispatch(t *testing.T) {
	f := newFixture(Options{CancelDispatchOnDissolve: true})
	f.makeGroup("A", "B")
	ctx := context.Background()
	f.c.RequestGoSecond(ctx, "A", "gw-1")

	f.c.Leave(ctx, "A", "A")
	f.sched.fire()

	if len(f.gw.dispatched) != 0 {
		t.Fatalf("expected dispatch canceled with the group, got %v", f.gw.dispatched)
	}
}

func TestDispatchJobDropsWhenDissolveWinsTheRace(t *testing.T) {
	f := newFixture(Options{CancelDispatchOnDissolve: true})
	f.makeGroup("A", "B")
	ctx := context.Background()
	f.c.RequestGoSecond(ctx, "A", "gw-1")

	// The timer can fire just before dissolve cancels it; the job then waits
	// on the mutex while dissolve clears the pending entry, and must give up
	// once it gets in. Invoke the job body directly to pin that ordering.
	f.c.Leave(ctx, "A", "A")
	f.c.dispatchCaptured("A", "gw-1", []string{"A", "B"})

	if len(f.gw.dispatched) != 0 {
		t.Fatalf("expected the late job to honor the cancellation, got %v", f.gw.dispatched)
	}
}

func TestDissolveKeepsDispatchInLegacyMode(t *testing.T) {
	f := newFixture(Options{CancelDispatchOnDissolve: false})
	f.makeGroup("A", "B")
	ctx := context.Background()
	f.c.RequestGoSecond(ctx, "A", "gw-1")

	f.c.Leave(ctx, "A", "A")
	f.sched.fire()

	if len(f.gw.dispatched) != 1 {
		t.Fatalf("expected the captured list dispatched anyway, got %v", f.gw.dispatched)
	}
	if f.audits.eventCount(audit.EventSuspicious) == 0 {
		t.Fatal("expected the stale dispatch recorded for audit")
	}
}

func TestInformDestinationChange(t *testing.T) {
	second := &fakeGateway{id: "gw-2", openSeats: 8, occupants: map[string]bool{}}
	f := newFixture(Options{})
	f.dir.order = append(f.dir.order, second.id)
	f.dir.gateways[second.id] = second
	f.makeGroup("A", "B", "C")
	ctx := context.Background()

	f.c.InformDestinationChange(ctx, "A", 1)

	for _, id := range []string{"B", "C"} {
		n, ok := f.notes.lastTo(id)
		if !ok {
			t.Fatalf("expected destination notice to %s", id)
		}
		if d, ok := n.(notify.DestinationChanged); !ok || d.Offset != 1 {
			t.Fatalf("expected offset 1, got %#v", n)
		}
	}
	if len(f.notes.to("A")) != 0 {
		t.Fatal("the leader already knows the destination")
	}
}

func TestInformDestinationChangeRejectsOutOfRangeOffset(t *testing.T) {
	f := newFixture(Options{})
	f.makeGroup("A", "B")
	ctx := context.Background()

	f.c.InformDestinationChange(ctx, "A", -1)
	f.c.InformDestinationChange(ctx, "A", 5)

	if len(f.notes.sent) != 0 {
		t.Fatalf("expected no broadcasts, got %v", f.notes.sent)
	}
	if f.audits.eventCount(audit.EventSuspicious) != 2 {
		t.Fatalf("expected both violations audited, got %d", f.audits.eventCount(audit.EventSuspicious))
	}
}
