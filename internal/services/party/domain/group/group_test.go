package group

import (
	stderrors "errors"
	"testing"

	apperrors "github.com/quillback/liftline/internal/platform/errors"
)

func TestNewGroupHasLeaderFirst(t *testing.T) {
	g := New("leader-1", "invitee-1", 4)
	if g.MemberCount() != 1 || g.Members[0] != "leader-1" {
		t.Fatalf("expected leader as only member, got %v", g.Members)
	}
	if !g.IsPending("invitee-1") {
		t.Fatal("expected invitee to be pending")
	}
	if g.Capacity != 4 {
		t.Fatalf("expected capacity 4, got %d", g.Capacity)
	}
}

func TestNewGroupDefaultsCapacity(t *testing.T) {
	g := New("leader-1", "invitee-1", 0)
	if g.Capacity != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, g.Capacity)
	}
}

func TestAddMemberPromotesPending(t *testing.T) {
	g := New("leader-1", "invitee-1", 4)
	if err := g.AddMember("invitee-1"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if g.IsPending("invitee-1") {
		t.Fatal("expected pending entry to be cleared")
	}
	if !g.IsMember("invitee-1") {
		t.Fatal("expected invitee to be a member")
	}
	if g.Members[1] != "invitee-1" {
		t.Fatalf("expected insertion order preserved, got %v", g.Members)
	}
}

func TestAddMemberRejectsWhenFull(t *testing.T) {
	g := New("leader-1", "b", 2)
	if err := g.AddMember("b"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	g.AddPending("c")
	err := g.AddMember("c")
	if err == nil {
		t.Fatal("expected capacity error")
	}
	if !stderrors.Is(err, apperrors.New(apperrors.CodeGroupCapacityExceeded, "")) {
		t.Fatalf("expected capacity code, got %v", err)
	}
	if !apperrors.IsCode(err, apperrors.CodeGroupCapacityExceeded) {
		t.Fatalf("expected IsCode to recognize the capacity code, got %q", apperrors.GetCode(err))
	}
	if g.MemberCount() != 2 {
		t.Fatalf("expected member count unchanged, got %d", g.MemberCount())
	}
}

func TestAddPendingClearsKickedMarker(t *testing.T) {
	g := New("leader-1", "b", 4)
	g.Drop("b", true)
	if !g.IsKicked("b") {
		t.Fatal("expected b to be marked kicked")
	}
	g.AddPending("b")
	if g.IsKicked("b") {
		t.Fatal("expected re-invite to clear the kicked marker")
	}
	if !g.IsPending("b") {
		t.Fatal("expected b to be pending again")
	}
}

func TestDropRemovesEveryTrace(t *testing.T) {
	g := New("leader-1", "b", 4)
	if err := g.AddMember("b"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	g.Drop("b", false)
	if g.IsMember("b") || g.IsPending("b") || g.IsKicked("b") {
		t.Fatal("expected b fully removed")
	}
}

func TestRosterReturnsCopies(t *testing.T) {
	g := New("leader-1", "b", 4)
	g.AddPending("z")
	g.AddPending("a")
	members, pending, kicked := g.Roster()
	if len(members) != 1 || members[0] != "leader-1" {
		t.Fatalf("unexpected members %v", members)
	}
	if len(pending) != 3 || pending[0] != "a" || pending[1] != "b" || pending[2] != "z" {
		t.Fatalf("expected sorted pending, got %v", pending)
	}
	if len(kicked) != 0 {
		t.Fatalf("expected no kicked, got %v", kicked)
	}

	members[0] = "mutated"
	if g.Members[0] != "leader-1" {
		t.Fatal("roster must not alias internal state")
	}
}
