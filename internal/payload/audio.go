package payload

import (
	"regexp"
	"strings"
)

// Audio URL resolution runs in fixed stages, first success wins:
//
//  1. Direct field match: the known recording field names at the root, then
//     under message.artifact, call, and artifact. Root-level fields are
//     checked before the nested containers. A direct match is returned
//     as-is, even when blank; blank means the vendor explicitly sent an
//     empty recording slot, and falling through would invent data.
//  2. Shallow map scan: url/link/href keys one level down, then a
//     "recordings" list holding either URL strings or maps with a url-like key.
//  3. Heuristic walk: any string anywhere in the tree that starts with http
//     and looks like audio (known extension, or mentions recording/audio).
//     Heuristic hits must be non-empty http URLs.
//
// ResolveAudioURLFromText covers payloads that never parsed as JSON at all.

var audioFieldNames = []string{
	"recordingUrl", "recording_url",
	"audioUrl", "audio_url",
	"mediaUrl", "media_url",
}

var audioContainerPaths = []string{"message.artifact", "call", "artifact"}

var urlKeyNames = []string{"url", "link", "href"}

// ResolveAudioURL finds a playable recording URL in a parsed payload tree.
func ResolveAudioURL(root Value) (string, bool) {
	// Stage 1: direct field names, root before nested containers.
	if s, ok := directAudioField(root); ok {
		return s, true
	}
	for _, container := range audioContainerPaths {
		node, ok := root.At(container)
		if !ok {
			continue
		}
		if s, ok := directAudioField(node); ok {
			return s, true
		}
	}

	// Stage 2: one level of nested maps, then a recordings list.
	for _, key := range root.Keys() {
		child, _ := root.Get(key)
		if child.Kind() != KindMap {
			continue
		}
		for _, urlKey := range urlKeyNames {
			if node, ok := child.Get(urlKey); ok {
				if s, ok := node.AsString(); ok && strings.HasPrefix(s, "http") {
					return s, true
				}
			}
		}
	}
	if node, ok := root.At("recordings"); ok {
		if s, ok := scanRecordingsList(node); ok {
			return s, true
		}
	}

	// Stage 3: heuristic walk over every string in the tree.
	return heuristicScan(root)
}

func directAudioField(node Value) (string, bool) {
	for _, name := range audioFieldNames {
		child, ok := node.Get(name)
		if !ok || child.IsNull() {
			continue
		}
		if s, ok := child.AsString(); ok {
			return s, true
		}
	}
	return "", false
}

func scanRecordingsList(node Value) (string, bool) {
	for _, item := range node.Items() {
		if s, ok := item.AsString(); ok && strings.HasPrefix(s, "http") {
			return s, true
		}
		if item.Kind() != KindMap {
			continue
		}
		keys := append(append([]string{}, audioFieldNames...), urlKeyNames...)
		for _, key := range keys {
			child, ok := item.Get(key)
			if !ok {
				continue
			}
			if s, ok := child.AsString(); ok && strings.HasPrefix(s, "http") {
				return s, true
			}
		}
	}
	return "", false
}

func heuristicScan(node Value) (string, bool) {
	if s, ok := node.AsString(); ok && looksLikeAudioURL(s) {
		return s, true
	}
	for _, key := range node.Keys() {
		child, _ := node.Get(key)
		if s, ok := heuristicScan(child); ok {
			return s, true
		}
	}
	for _, item := range node.Items() {
		if s, ok := heuristicScan(item); ok {
			return s, true
		}
	}
	return "", false
}

func looksLikeAudioURL(s string) bool {
	if !strings.HasPrefix(s, "http") {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, ".mp3") || strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".m4a") {
		return true
	}
	return strings.Contains(lower, "recording") || strings.Contains(lower, "audio")
}

var (
	// Strict: a quoted known field name with a quoted http URL value.
	reQuotedAudioField = regexp.MustCompile(`"(?:recordingUrl|recording_url|audioUrl|audio_url|mediaUrl|media_url)"\s*:\s*"(https?://[^"]+)"`)
	// Loose: same field names, tolerating lost quotes and = separators.
	reLooseAudioField = regexp.MustCompile(`(?:recordingUrl|recording_url|audioUrl|audio_url|mediaUrl|media_url)"?\s*[:=]\s*"?(https?://[^\s"',}]+)`)
	// Last resort: any URL with a known audio extension.
	reAnyAudioURL = regexp.MustCompile(`https?://[^\s"',}]+\.(?:mp3|wav|m4a)`)
)

// ResolveAudioURLFromText recovers a recording URL from raw payload text that
// could not be parsed as JSON (truncated or corrupt deliveries). Patterns are
// tried strictest first.
func ResolveAudioURLFromText(raw string) (string, bool) {
	if m := reQuotedAudioField.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := reLooseAudioField.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := reAnyAudioURL.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}

// ResolveAudio is the combined entry point: structured lookup when the bytes
// parse as JSON, regex recovery against the raw text when they do not.
func ResolveAudio(raw []byte) (string, bool) {
	root, err := Parse(raw)
	if err != nil {
		return ResolveAudioURLFromText(string(raw))
	}
	return ResolveAudioURL(root)
}
