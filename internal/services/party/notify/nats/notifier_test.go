package nats

import (
	"encoding/json"
	"testing"

	"github.com/quillback/liftline/internal/services/party/notify"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := Encode(notify.GroupDissolved{
		TriggerID:     "av-1",
		LeaderID:      "av-1",
		FormerMembers: []string{"av-1", "av-2"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Kind != notify.KindGroupDissolved {
		t.Fatalf("expected kind %s, got %s", notify.KindGroupDissolved, env.Kind)
	}
	if env.ID == "" {
		t.Fatal("expected a message id")
	}
	var payload notify.GroupDissolved
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.TriggerID != "av-1" || len(payload.FormerMembers) != 2 {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestDecodeRejectsMissingKind(t *testing.T) {
	if _, err := Decode([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for missing kind")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed data")
	}
}
