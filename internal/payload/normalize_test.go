package payload

import (
	"errors"
	"testing"
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
)

func TestNormalize_MetadataExternalNumberWinsOverEverything(t *testing.T) {
	raw := []byte(`{
		"conversation_id": "conv-1",
		"metadata": {"phone_call": {"external_number": "+13476342847"}},
		"conversation_initiation_client_data": {"dynamic_variables": {"system__caller_id": "+19999999999"}},
		"phone_number": "+18888888888"
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.CallerPhoneNumber != "+13476342847" {
		t.Fatalf("expected metadata number, got %q", rec.CallerPhoneNumber)
	}
}

func TestNormalize_CallerIDFallbackWhenMetadataAbsent(t *testing.T) {
	raw := []byte(`{
		"conversation_id": "conv-2",
		"conversation_initiation_client_data": {"dynamic_variables": {
			"system__caller_id": "+15551230000",
			"system__called_number": "+15559990000"
		}},
		"phone_number": "+18888888888"
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.CallerPhoneNumber != "+15551230000" {
		t.Fatalf("expected caller_id fallback, got %q", rec.CallerPhoneNumber)
	}
}

func TestNormalize_UnixStartAndDurationDeriveEnd(t *testing.T) {
	raw := []byte(`{"conversation_id":"conv-3","start_time_unix_secs":1687452378,"call_duration_secs":120}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	wantStart := time.Unix(1687452378, 0).UTC()
	if !rec.StartedAt.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, rec.StartedAt)
	}
	if rec.DurationSeconds != 120 {
		t.Fatalf("expected duration 120, got %d", rec.DurationSeconds)
	}
	if !rec.EndedAt.Equal(wantStart.Add(120 * time.Second)) {
		t.Fatalf("expected end = start + 120s, got %v", rec.EndedAt)
	}
}

func TestNormalize_ExplicitEndBeatsDerivation(t *testing.T) {
	raw := []byte(`{
		"conversation_id":"conv-4",
		"start_time_unix_secs":1687452378,
		"call_duration_secs":120,
		"end_time_unix_secs":1687452999
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !rec.EndedAt.Equal(time.Unix(1687452999, 0).UTC()) {
		t.Fatalf("explicit end must win, got %v", rec.EndedAt)
	}
}

func TestNormalize_DurationAcceptsNumericString(t *testing.T) {
	raw := []byte(`{"conversation_id":"conv-5","metadata":{"start_time_unix_secs":1687452378,"call_duration_secs":"90"}}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.DurationSeconds != 90 {
		t.Fatalf("expected duration 90 from string, got %d", rec.DurationSeconds)
	}
}

func TestNormalize_CreatedAtParsedAsTimestampString(t *testing.T) {
	raw := []byte(`{"call_id":"c-6","created_at":"2023-06-22T16:46:18Z"}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := time.Date(2023, 6, 22, 16, 46, 18, 0, time.UTC)
	if !rec.StartedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rec.StartedAt)
	}
}

func TestNormalize_VapiNestedCallObject(t *testing.T) {
	raw := []byte(`{
		"message": {
			"call": {
				"id": "vapi-call-1",
				"assistantId": "asst-9",
				"customer": {"number": "+12125550100"},
				"startedAt": "2024-03-01T10:00:00Z",
				"endedAt": "2024-03-01T10:02:00Z",
				"status": "ended"
			},
			"artifact": {"recordingUrl": "https://cdn.vapi.ai/rec-1.wav"}
		}
	}`)

	rec, err := Normalize(calllog.ProviderVapi, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.ExternalCallID != "vapi-call-1" {
		t.Fatalf("expected nested call id, got %q", rec.ExternalCallID)
	}
	if rec.ExternalAssistantID != "asst-9" {
		t.Fatalf("expected assistant id, got %q", rec.ExternalAssistantID)
	}
	if rec.CallerPhoneNumber != "+12125550100" {
		t.Fatalf("expected customer number, got %q", rec.CallerPhoneNumber)
	}
	if rec.Status != calllog.CallStatusCompleted {
		t.Fatalf("expected ended -> completed, got %q", rec.Status)
	}
	if rec.AudioURL != "https://cdn.vapi.ai/rec-1.wav" {
		t.Fatalf("expected artifact recording url, got %q", rec.AudioURL)
	}
	if rec.EndedAt.Sub(rec.StartedAt) != 2*time.Minute {
		t.Fatalf("expected explicit 2m window, got %v", rec.EndedAt.Sub(rec.StartedAt))
	}
}

func TestNormalize_StatusMappingAndUnknownPassthrough(t *testing.T) {
	cases := map[string]calllog.CallStatus{
		"done":        calllog.CallStatusCompleted,
		"FAILED":      calllog.CallStatusFailed,
		"in-progress": calllog.CallStatusInProgress,
		"martian":     calllog.CallStatusUnknown,
	}
	for in, want := range cases {
		rec, err := Normalize(calllog.ProviderElevenLabs, []byte(`{"conversation_id":"s","status":"`+in+`"}`))
		if err != nil {
			t.Fatalf("normalize %q: %v", in, err)
		}
		if rec.Status != want {
			t.Fatalf("status %q: expected %q, got %q", in, want, rec.Status)
		}
	}
}

func TestNormalize_CallSuccessfulFlagWhenNoStatusField(t *testing.T) {
	rec, err := Normalize(calllog.ProviderElevenLabs, []byte(`{"conversation_id":"s2","call_successful":true}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.Status != calllog.CallStatusCompleted {
		t.Fatalf("expected completed from call_successful, got %q", rec.Status)
	}
}

func TestNormalize_StructuredTranscriptWithRoleLabels(t *testing.T) {
	raw := []byte(`{
		"conversation_id": "conv-7",
		"transcript": [
			{"role": "agent", "message": "Hello, how can I help?"},
			{"role": "user", "message": "I need an appointment."},
			{"role": "[agent]", "message": "Sure."}
		]
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "AI: Hello, how can I help?\nUser: I need an appointment.\nAI: Sure."
	if rec.Transcript != want {
		t.Fatalf("transcript mismatch:\n got: %q\nwant: %q", rec.Transcript, want)
	}
}

func TestNormalize_TranscriptBlobFallback(t *testing.T) {
	rec, err := Normalize(calllog.ProviderElevenLabs, []byte(`{"conversation_id":"conv-8","analysis":{"transcript_summary":"caller asked about pricing"}}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.Transcript != "caller asked about pricing" {
		t.Fatalf("expected summary blob, got %q", rec.Transcript)
	}
}

func TestNormalize_NoCallIDAnywhereIsRejected(t *testing.T) {
	_, err := Normalize(calllog.ProviderElevenLabs, []byte(`{"phone_number":"+15550001111","status":"done"}`))
	if !errors.Is(err, ErrNoCallID) {
		t.Fatalf("expected ErrNoCallID, got %v", err)
	}
}

func TestNormalize_IsDeterministic(t *testing.T) {
	raw := []byte(`{
		"conversation_id": "conv-9",
		"metadata": {"phone_call": {"external_number": "+13476342847"}, "start_time_unix_secs": 1687452378},
		"call_duration_secs": 60,
		"status": "done",
		"recording_url": "https://api.example.com/rec.mp3"
	}`)

	a, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !a.SameAs(b) || a.RawPayload != b.RawPayload {
		t.Fatalf("normalization must be idempotent:\n a=%+v\n b=%+v", a, b)
	}
}

func TestNormalize_RetainsRawPayloadVerbatim(t *testing.T) {
	raw := []byte(`{"conversation_id":"conv-10","weird":  [1,2,3]}`)
	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rec.RawPayload != string(raw) {
		t.Fatalf("raw payload must be kept byte-for-byte")
	}
}

func TestNormalize_StartedAtBeatsCreatedAtWhenBothPresent(t *testing.T) {
	raw := []byte(`{
		"call_id": "c-12",
		"startedAt": "2023-06-22T16:00:00Z",
		"created_at": "2023-06-22T16:46:18Z"
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := time.Date(2023, 6, 22, 16, 0, 0, 0, time.UTC)
	if !rec.StartedAt.Equal(want) {
		t.Fatalf("expected call start %v, got %v", want, rec.StartedAt)
	}
}

func TestNormalize_MultibyteRoleLabelCapitalizedCleanly(t *testing.T) {
	raw := []byte(`{
		"conversation_id": "conv-13",
		"transcript": [
			{"role": "ärztin", "message": "Guten Tag."}
		]
	}`)

	rec, err := Normalize(calllog.ProviderElevenLabs, raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "Ärztin: Guten Tag."
	if rec.Transcript != want {
		t.Fatalf("transcript mismatch:\n got: %q\nwant: %q", rec.Transcript, want)
	}
}
