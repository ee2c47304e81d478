package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeGroupNotFound, "group missing")
	target := New(CodeGroupNotFound, "different message")
	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeGroupCapacityExceeded, "group full")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeGroupAffiliationConflict, "doubly affiliated")); got != CodeGroupAffiliationConflict {
		t.Fatalf("expected affiliation conflict code, got %q", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %q", got)
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeGroupCapacityExceeded, "group full", map[string]string{"leader": "leader-1"})
	if err.Metadata["leader"] != "leader-1" {
		t.Fatalf("expected metadata, got %v", err.Metadata)
	}
	if !IsCode(err, CodeGroupCapacityExceeded) {
		t.Fatal("expected IsCode to match")
	}
}
