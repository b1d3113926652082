// Package processor contains the default EntryProcessor applied to the
// in-progress agent entry for every content-bearing event.
package processor

import "github.com/hupe1980/agentbridge/core"

// Accretion is the default EntryProcessor: streamed content concatenates onto
// the entry, tool-call events maintain the entry's tool-call records,
// reasoning steps collect separately, and a terminal completed event replaces
// the accreted content with the final one when present.
type Accretion struct{}

var _ core.EntryProcessor = Accretion{}

// Process applies one canonical event to the entry.
func (Accretion) Process(entry *core.ChatMessage, ev core.RunEvent) {
	switch ev.Kind {
	case core.EventToolCallStarted, core.EventTeamToolCallStarted:
		if ev.Tool != nil {
			startToolCall(entry, *ev.Tool)
		}
	case core.EventToolCallDone, core.EventTeamToolCallDone:
		if ev.Tool != nil {
			completeToolCall(entry, *ev.Tool)
		}
	case core.EventReasoningStep, core.EventTeamReasoningStep:
		if ev.Content != "" {
			entry.ReasoningSteps = append(entry.ReasoningSteps, ev.Content)
		}
	case core.EventReasoningStart, core.EventReasoningDone,
		core.EventTeamReasoningStart, core.EventTeamReasoningDone,
		core.EventMemoryStarted, core.EventMemoryDone,
		core.EventTeamMemoryStarted, core.EventTeamMemoryDone:
		// Signals only; nothing accretes.
	case core.EventRunCompleted, core.EventTeamRunCompleted:
		if ev.Content != "" {
			entry.Content = ev.Content
		}
		for _, tc := range ev.Tools {
			completeToolCall(entry, tc)
		}
	default:
		// Content accretion; unknown kinds land here so forward-compatible
		// server additions still surface their content.
		entry.Content += ev.Content
	}
}

// startToolCall appends a record for an unseen tool call id.
func startToolCall(entry *core.ChatMessage, tc core.ToolCall) {
	if findToolCall(entry, tc.ToolCallID) != nil {
		return
	}
	entry.ToolCalls = append(entry.ToolCalls, tc.Clone())
}

// completeToolCall fills result fields on the matching record, appending when
// the started event never arrived.
func completeToolCall(entry *core.ChatMessage, tc core.ToolCall) {
	existing := findToolCall(entry, tc.ToolCallID)
	if existing == nil {
		entry.ToolCalls = append(entry.ToolCalls, tc.Clone())
		return
	}
	existing.Content = tc.Content
	existing.ToolCallError = tc.ToolCallError
	if tc.ToolArgs != nil {
		existing.ToolArgs = tc.Clone().ToolArgs
	}
}

func findToolCall(entry *core.ChatMessage, id string) *core.ToolCall {
	for i := range entry.ToolCalls {
		if entry.ToolCalls[i].ToolCallID == id {
			return &entry.ToolCalls[i]
		}
	}
	return nil
}
