package calllog

import "time"

// Provider identifies the external voice-AI vendor a call record came from.
// Values are stored in Postgres; keep them stable.
type Provider string

const (
	ProviderVapi       Provider = "VAPI"
	ProviderElevenLabs Provider = "ELEVENLABS"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderVapi, ProviderElevenLabs:
		return true
	default:
		return false
	}
}

// CallStatus is the canonical call outcome. Provider-specific vocabularies are
// mapped onto this set during normalization; values the mapping does not know
// become CallStatusUnknown rather than failing the record.
type CallStatus string

const (
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusUnknown    CallStatus = "unknown"
)

// CallRecord is the canonical, provider-agnostic call log entity.
//
// Uniqueness invariant: (Provider, ExternalCallID) identifies at most one row.
// Re-ingesting the same external call updates the existing row, never duplicates it.
//
// Optional fields use zero values for "absent": empty string, zero time, zero
// duration. ExternalCallID is the only field required for a record to be valid.
type CallRecord struct {
	ID       string   `json:"id" db:"id"`
	Provider Provider `json:"provider" db:"provider"`

	ExternalCallID      string `json:"external_call_id" db:"external_call_id"`
	ExternalAssistantID string `json:"external_assistant_id,omitempty" db:"external_assistant_id"`

	CallerPhoneNumber string `json:"caller_phone_number,omitempty" db:"caller_phone_number"`

	StartedAt time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty" db:"ended_at"`

	// DurationSeconds is seconds; 0 means the payload carried no duration.
	DurationSeconds int `json:"duration_seconds,omitempty" db:"duration_seconds"`

	Status CallStatus `json:"status" db:"status"`

	AudioURL   string `json:"audio_url,omitempty" db:"audio_url"`
	Transcript string `json:"transcript,omitempty" db:"transcript"`

	// RawPayload is the original payload bytes, retained verbatim for audit.
	// It is never part of reconciliation equality.
	RawPayload string `json:"raw_payload,omitempty" db:"raw_payload"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SameAs reports whether two records agree on every tracked field.
// The sync reconciler uses this to classify an incoming record as
// unchanged (skip) vs. changed (update). ID, RawPayload and the
// bookkeeping timestamps are deliberately excluded.
func (r CallRecord) SameAs(other CallRecord) bool {
	return r.Provider == other.Provider &&
		r.ExternalCallID == other.ExternalCallID &&
		r.ExternalAssistantID == other.ExternalAssistantID &&
		r.CallerPhoneNumber == other.CallerPhoneNumber &&
		r.StartedAt.Equal(other.StartedAt) &&
		r.EndedAt.Equal(other.EndedAt) &&
		r.DurationSeconds == other.DurationSeconds &&
		r.Status == other.Status &&
		r.AudioURL == other.AudioURL &&
		r.Transcript == other.Transcript
}
