package core

import (
	"strings"

	"github.com/tidwall/gjson"
)

// EventKind identifies the semantic type of a canonical run event. The wire
// protocol delivers kinds as plain strings; unknown values are preserved so
// that forward-compatible server additions flow through content delegation
// instead of being rejected.
type EventKind string

// Agent-mode event kinds.
const (
	EventRunStarted      EventKind = "RunStarted"
	EventRunContent      EventKind = "RunContent"
	EventRunCompleted    EventKind = "RunCompleted"
	EventRunError        EventKind = "RunError"
	EventRunCancelled    EventKind = "RunCancelled"
	EventRunPaused       EventKind = "RunPaused"
	EventRunContinued    EventKind = "RunContinued"
	EventToolCallStarted EventKind = "ToolCallStarted"
	EventToolCallDone    EventKind = "ToolCallCompleted"
	EventReasoningStart  EventKind = "ReasoningStarted"
	EventReasoningStep   EventKind = "ReasoningStep"
	EventReasoningDone   EventKind = "ReasoningCompleted"
	EventMemoryStarted   EventKind = "MemoryUpdateStarted"
	EventMemoryDone      EventKind = "MemoryUpdateCompleted"
	EventCustom          EventKind = "CustomEvent"
)

// Team-mode event kinds. Mirrors of the agent kinds emitted when the remote
// target is a team rather than a single agent.
const (
	EventTeamRunStarted      EventKind = "TeamRunStarted"
	EventTeamRunContent      EventKind = "TeamRunContent"
	EventTeamRunCompleted    EventKind = "TeamRunCompleted"
	EventTeamRunError        EventKind = "TeamRunError"
	EventTeamRunCancelled    EventKind = "TeamRunCancelled"
	EventTeamToolCallStarted EventKind = "TeamToolCallStarted"
	EventTeamToolCallDone    EventKind = "TeamToolCallCompleted"
	EventTeamReasoningStart  EventKind = "TeamReasoningStarted"
	EventTeamReasoningStep   EventKind = "TeamReasoningStep"
	EventTeamReasoningDone   EventKind = "TeamReasoningCompleted"
	EventTeamMemoryStarted   EventKind = "TeamMemoryUpdateStarted"
	EventTeamMemoryDone      EventKind = "TeamMemoryUpdateCompleted"
)

// IsTeam reports whether the kind belongs to the team-prefixed family.
func (k EventKind) IsTeam() bool { return strings.HasPrefix(string(k), "Team") }

// ModeIndependent reports whether the kind is processed regardless of the
// client mode. Pause, continue, cancel and custom events affect conversation
// state in both agent and team mode.
func (k EventKind) ModeIndependent() bool {
	switch k {
	case EventRunPaused, EventRunContinued, EventRunCancelled, EventCustom:
		return true
	default:
		return false
	}
}

// RunEvent is the canonical, kind-tagged record every wire frame is
// normalized to before business logic consumes it. Both wire encodings (the
// flat legacy form and the enveloped {event, data} form) produce the same
// RunEvent; downstream code never learns which form originated an event.
//
// Raw holds the flattened frame JSON so that fields beyond the decoded
// convenience set remain reachable via Get.
type RunEvent struct {
	Kind        EventKind
	RunID       string
	SessionID   string
	AgentID     string
	TeamID      string
	Content     string
	ContentType string
	Tool        *ToolCall
	Tools       []ToolCall
	CreatedAt   int64
	Raw         string
}

// Get resolves an arbitrary path in the flattened frame. It is the
// forward-compatibility escape hatch for fields the typed struct does not
// decode.
func (e RunEvent) Get(path string) gjson.Result { return gjson.Get(e.Raw, path) }

// HasContent reports whether the event carries content for accretion.
func (e RunEvent) HasContent() bool { return e.Content != "" }
