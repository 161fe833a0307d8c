package calllog

import (
	"testing"
	"time"
)

func TestSameAs_IgnoresRawPayloadAndBookkeeping(t *testing.T) {
	base := CallRecord{
		Provider:        ProviderElevenLabs,
		ExternalCallID:  "conv-1",
		Status:          CallStatusCompleted,
		DurationSeconds: 60,
		StartedAt:       time.Unix(1687452378, 0).UTC(),
	}

	other := base
	other.ID = "different-row-id"
	other.RawPayload = `{"refetched": true}`
	other.UpdatedAt = time.Now()

	if !base.SameAs(other) {
		t.Fatalf("raw payload and bookkeeping fields must not count as changes")
	}
}

func TestSameAs_DetectsTrackedFieldChange(t *testing.T) {
	base := CallRecord{Provider: ProviderVapi, ExternalCallID: "c", Status: CallStatusInProgress}

	changed := base
	changed.Status = CallStatusCompleted
	if base.SameAs(changed) {
		t.Fatalf("status change must be detected")
	}

	changed = base
	changed.AudioURL = "https://cdn.example.com/rec.mp3"
	if base.SameAs(changed) {
		t.Fatalf("audio url change must be detected")
	}
}

func TestProviderValid(t *testing.T) {
	if !ProviderVapi.Valid() || !ProviderElevenLabs.Valid() {
		t.Fatalf("known providers must be valid")
	}
	if Provider("TWILIO").Valid() {
		t.Fatalf("unknown provider must be invalid")
	}
}
