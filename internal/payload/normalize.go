package payload

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
)

// ErrNoCallID marks a payload with no resolvable external call identifier.
// Such a payload is unusable: callers log and skip it, and must never persist
// a record without this key. Every other field is individually optional.
var ErrNoCallID = errors.New("payload: no resolvable external call id")

// Precedence tables. Paths are tried in order and the first hit wins; once a
// value resolves at one level, lower-precedence sources are never consulted
// for that field. The ordering encodes "prefer the more specific/structured
// source, fall back to legacy flat fields": vendors shipped several payload
// generations and the old flat keys still appear alongside the nested ones.

var phonePaths = map[calllog.Provider][]string{
	calllog.ProviderVapi: {
		"metadata.phone_call.external_number",
		"conversation_initiation_client_data.dynamic_variables.system__caller_id",
		"conversation_initiation_client_data.dynamic_variables.system__called_number",
		"phone_number",
		"message.call.customer.number",
	},
	calllog.ProviderElevenLabs: {
		"metadata.phone_call.external_number",
		"conversation_initiation_client_data.dynamic_variables.system__caller_id",
		"conversation_initiation_client_data.dynamic_variables.system__called_number",
		"phone_number",
	},
}

var callIDPaths = map[calllog.Provider][]string{
	calllog.ProviderVapi:       {"message.call.id", "call.id", "call_id", "id"},
	calllog.ProviderElevenLabs: {"conversation_id", "call_id", "id"},
}

var assistantIDPaths = map[calllog.Provider][]string{
	calllog.ProviderVapi:       {"message.call.assistantId", "message.assistant.id", "assistant_id", "assistantId"},
	calllog.ProviderElevenLabs: {"agent_id", "metadata.agent_id", "assistant_id"},
}

// Text-form timestamp candidates rank the structured call-object fields
// (message.call.startedAt, startedAt) ahead of the created_at fallback:
// created_at is the record's write time, not the call's start, so when both
// coexist the call-object value wins.
var startUnixPaths = []string{"start_time_unix_secs", "metadata.start_time_unix_secs"}
var startTextPaths = []string{"message.call.startedAt", "startedAt", "created_at"}

var endUnixPaths = []string{"end_time_unix_secs", "metadata.end_time_unix_secs"}
var endTextPaths = []string{"message.call.endedAt", "endedAt", "ended_at"}

var durationPaths = []string{"call_duration_secs", "metadata.call_duration_secs", "duration_seconds"}

var statusPaths = []string{"status", "call_status", "message.call.status"}

var transcriptListPaths = []string{"transcript", "message.artifact.messages"}
var transcriptTextPaths = []string{"message.artifact.transcript", "transcript", "analysis.transcript_summary"}

// statusMap translates provider status vocabulary to the canonical set.
// Unknown words pass through as CallStatusUnknown rather than failing.
var statusMap = map[string]calllog.CallStatus{
	"done":        calllog.CallStatusCompleted,
	"completed":   calllog.CallStatusCompleted,
	"ended":       calllog.CallStatusCompleted,
	"success":     calllog.CallStatusCompleted,
	"successful":  calllog.CallStatusCompleted,
	"failed":      calllog.CallStatusFailed,
	"error":       calllog.CallStatusFailed,
	"in-progress": calllog.CallStatusInProgress,
	"in_progress": calllog.CallStatusInProgress,
	"processing":  calllog.CallStatusInProgress,
	"initiated":   calllog.CallStatusInProgress,
	"ringing":     calllog.CallStatusInProgress,
	"queued":      calllog.CallStatusInProgress,
}

// Normalize transforms one raw provider payload into a canonical CallRecord.
// It is a pure function: the same bytes always produce the same record, and
// the only failure mode is an unresolvable external call id (or bytes that
// are not JSON at all).
func Normalize(provider calllog.Provider, raw []byte) (calllog.CallRecord, error) {
	root, err := Parse(raw)
	if err != nil {
		return calllog.CallRecord{}, fmt.Errorf("payload: parse: %w", err)
	}
	return NormalizeTree(provider, root, raw)
}

// NormalizeTree is Normalize for an already-parsed tree. raw is retained
// verbatim on the record for audit.
func NormalizeTree(provider calllog.Provider, root Value, raw []byte) (calllog.CallRecord, error) {
	externalID, ok := FirstString(root, callIDPaths[provider]...)
	if !ok || strings.TrimSpace(externalID) == "" {
		return calllog.CallRecord{}, ErrNoCallID
	}

	rec := calllog.CallRecord{
		Provider:       provider,
		ExternalCallID: externalID,
		RawPayload:     string(raw),
	}

	if s, ok := FirstString(root, assistantIDPaths[provider]...); ok {
		rec.ExternalAssistantID = s
	}
	if s, ok := FirstString(root, phonePaths[provider]...); ok {
		rec.CallerPhoneNumber = s
	}

	rec.StartedAt = extractInstant(root, startUnixPaths, startTextPaths)

	if n, ok := FirstNumber(root, durationPaths...); ok && n > 0 {
		rec.DurationSeconds = int(n)
	}

	rec.EndedAt = extractInstant(root, endUnixPaths, endTextPaths)
	if rec.EndedAt.IsZero() && !rec.StartedAt.IsZero() && rec.DurationSeconds > 0 {
		rec.EndedAt = rec.StartedAt.Add(time.Duration(rec.DurationSeconds) * time.Second)
	}
	if rec.EndedAt.IsZero() {
		rec.EndedAt = extractInstant(root, nil, []string{"updated_at"})
	}

	rec.Status = extractStatus(root)

	if url, ok := ResolveAudioURL(root); ok {
		rec.AudioURL = url
	}

	rec.Transcript = extractTranscript(root)

	return rec, nil
}

// extractInstant tries unix-seconds candidates first, then timestamp strings.
// All results are UTC.
func extractInstant(root Value, unixPaths, textPaths []string) time.Time {
	if n, ok := FirstNumber(root, unixPaths...); ok && n > 0 {
		return time.Unix(int64(n), 0).UTC()
	}
	for _, p := range textPaths {
		node, ok := root.At(p)
		if !ok {
			continue
		}
		s, ok := node.AsString()
		if !ok {
			continue
		}
		if t, ok := parseTimestamp(s); ok {
			return t
		}
	}
	return time.Time{}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func extractStatus(root Value) calllog.CallStatus {
	s, ok := FirstString(root, statusPaths...)
	if !ok {
		// ElevenLabs reports outcome as a call_successful flag on some versions.
		if b, ok := FirstBool(root, "call_successful", "analysis.call_successful"); ok {
			if b {
				return calllog.CallStatusCompleted
			}
			return calllog.CallStatusFailed
		}
		return calllog.CallStatusUnknown
	}
	if mapped, ok := statusMap[strings.ToLower(strings.TrimSpace(s))]; ok {
		return mapped
	}
	return calllog.CallStatusUnknown
}

// extractTranscript prefers a structured per-message array, concatenated with
// normalized role labels, over the provider's transcript blob. Role labels
// are normalized at ingestion so webhook-ingested and poll-ingested rows
// store the same shape.
func extractTranscript(root Value) string {
	if items, ok := FirstList(root, transcriptListPaths...); ok {
		if s := joinTranscriptMessages(items); s != "" {
			return s
		}
	}
	if s, ok := FirstString(root, transcriptTextPaths...); ok {
		return s
	}
	return ""
}

var transcriptTextKeys = []string{"message", "text", "content"}

func joinTranscriptMessages(items []Value) string {
	var lines []string
	for _, item := range items {
		if item.Kind() != KindMap {
			continue
		}
		var text string
		for _, key := range transcriptTextKeys {
			if node, ok := item.Get(key); ok {
				if s, ok := node.AsString(); ok && s != "" {
					text = s
					break
				}
			}
		}
		if text == "" {
			continue
		}
		role := ""
		if node, ok := item.Get("role"); ok {
			role, _ = node.AsString()
		}
		lines = append(lines, normalizeRoleLabel(role)+": "+text)
	}
	return strings.Join(lines, "\n")
}

func normalizeRoleLabel(role string) string {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(role), "[]")) {
	case "agent", "assistant", "ai", "bot":
		return "AI"
	case "user", "customer", "caller", "human":
		return "User"
	case "":
		return "Unknown"
	default:
		return capitalize(strings.ToLower(strings.Trim(role, "[]")))
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
