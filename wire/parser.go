// Package wire turns the raw response stream of a run into canonical events.
// The transport delivers UTF-8 text in arbitrary chunks; Parse is called with
// the accumulated buffer after every read (and once more at end-of-stream)
// and extracts every complete JSON frame, returning the unconsumed remainder.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/hupe1980/agentbridge/core"
)

// MaxMalformedSpan is the size above which an unparsable candidate frame is
// escalated as a hard failure. A span this large that still fails to parse
// indicates a systemic stream problem, not a transient glitch worth
// resynchronizing past.
const MaxMalformedSpan = 10000

// FrameTooLargeError is the hard failure raised for an oversized unparsable
// span. It terminates the run instead of being skipped.
type FrameTooLargeError struct {
	Size int
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("wire: unparsable frame of %d bytes exceeds %d byte limit", e.Size, MaxMalformedSpan)
}

// Parse extracts every complete frame from buf, emitting one canonical event
// per frame in arrival order, and returns the unconsumed remainder to be
// re-queued for the next read. Malformed frames are skipped by resuming at
// the next opening brace, except oversized spans which raise a hard failure.
// Partial trailing data is never discarded.
func Parse(buf string, emit func(core.RunEvent)) (string, error) {
	rest := buf
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return rest, nil
		}
		end, complete := scanObject(rest, start)
		if !complete {
			// Incomplete frame: hand it back for the next read.
			return rest[start:], nil
		}
		span := rest[start : end+1]
		ev, err := normalize(span)
		if err != nil {
			if len(span) > MaxMalformedSpan {
				return rest, &FrameTooLargeError{Size: len(span)}
			}
			// Resynchronize at the next '{' after the failed opening brace
			// so one bad frame does not block the rest of the buffer.
			rest = rest[start+1:]
			continue
		}
		emit(ev)
		rest = rest[end+1:]
	}
}

// scanObject walks s from the '{' at start tracking brace depth, string
// literal state and escape state. Braces inside string literals are ignored.
// Returns the index of the matching '}' when the object closes within s.
func scanObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// normalize classifies a complete frame as legacy (flat, with an inline
// string "event" field and no "data") or enveloped ({event, data}) and
// flattens both to the same canonical shape. An enveloped "data" field may be
// an object or a JSON string needing a nested parse; a failed nested parse
// yields an empty payload rather than an error.
func normalize(span string) (core.RunEvent, error) {
	if !gjson.Valid(span) {
		return core.RunEvent{}, fmt.Errorf("wire: invalid frame")
	}
	root := gjson.Parse(span)
	kind := root.Get("event")
	data := root.Get("data")

	flat := span
	if kind.Type != gjson.String || data.Exists() {
		payload := "{}"
		switch {
		case data.IsObject():
			payload = data.Raw
		case data.Type == gjson.String:
			if nested := gjson.Parse(data.Str); nested.IsObject() && gjson.Valid(data.Str) {
				payload = data.Str
			}
		}
		merged, err := sjson.Set(payload, "event", kind.String())
		if err != nil {
			return core.RunEvent{}, fmt.Errorf("wire: flatten frame: %w", err)
		}
		flat = merged
	}
	return decode(flat), nil
}

// decode extracts the typed convenience fields from a flattened frame. The
// full frame is retained in Raw for forward-compatible access.
func decode(flat string) core.RunEvent {
	ev := core.RunEvent{
		Kind:        core.EventKind(gjson.Get(flat, "event").String()),
		RunID:       gjson.Get(flat, "run_id").String(),
		SessionID:   gjson.Get(flat, "session_id").String(),
		AgentID:     gjson.Get(flat, "agent_id").String(),
		TeamID:      gjson.Get(flat, "team_id").String(),
		Content:     gjson.Get(flat, "content").String(),
		ContentType: gjson.Get(flat, "content_type").String(),
		CreatedAt:   gjson.Get(flat, "created_at").Int(),
		Raw:         flat,
	}
	if tool := gjson.Get(flat, "tool"); tool.IsObject() {
		tc := decodeToolCall(tool)
		ev.Tool = &tc
	}
	if tools := gjson.Get(flat, "tools"); tools.IsArray() {
		for _, t := range tools.Array() {
			ev.Tools = append(ev.Tools, decodeToolCall(t))
		}
	}
	return ev
}

func decodeToolCall(r gjson.Result) core.ToolCall {
	tc := core.ToolCall{
		ToolCallID:           r.Get("tool_call_id").String(),
		ToolName:             r.Get("tool_name").String(),
		Content:              r.Get("content").String(),
		ToolCallError:        r.Get("tool_call_error").Bool(),
		RequiresConfirmation: r.Get("requires_confirmation").Bool(),
	}
	if args := r.Get("tool_args"); args.IsObject() {
		m := map[string]any{}
		if err := json.Unmarshal([]byte(args.Raw), &m); err == nil {
			tc.ToolArgs = m
		}
	}
	return tc
}
