package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/core"
)

func TestAccretion_ContentAccretes(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	p.Process(&entry, core.RunEvent{Kind: core.EventRunContent, Content: "Hello, "})
	p.Process(&entry, core.RunEvent{Kind: core.EventRunContent, Content: "world"})

	assert.Equal(t, "Hello, world", entry.Content)
}

func TestAccretion_UnknownKindStillAccretes(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	p.Process(&entry, core.RunEvent{Kind: "FutureServerThing", Content: "forward"})

	assert.Equal(t, "forward", entry.Content)
}

func TestAccretion_ToolCallLifecycle(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	started := core.ToolCall{ToolCallID: "t-1", ToolName: "search", ToolArgs: map[string]any{"q": "go"}}
	p.Process(&entry, core.RunEvent{Kind: core.EventToolCallStarted, Tool: &started})
	// Duplicate started events do not duplicate records.
	p.Process(&entry, core.RunEvent{Kind: core.EventToolCallStarted, Tool: &started})

	require.Len(t, entry.ToolCalls, 1)
	assert.Empty(t, entry.ToolCalls[0].Content)

	done := core.ToolCall{ToolCallID: "t-1", ToolName: "search", Content: "results", ToolCallError: false}
	p.Process(&entry, core.RunEvent{Kind: core.EventToolCallDone, Tool: &done})

	require.Len(t, entry.ToolCalls, 1)
	assert.Equal(t, "results", entry.ToolCalls[0].Content)
}

func TestAccretion_CompletionWithoutStart(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	done := core.ToolCall{ToolCallID: "t-2", ToolName: "fetch", Content: "data", ToolCallError: true}
	p.Process(&entry, core.RunEvent{Kind: core.EventToolCallDone, Tool: &done})

	require.Len(t, entry.ToolCalls, 1)
	assert.True(t, entry.ToolCalls[0].ToolCallError)
}

func TestAccretion_CompletedReplacesContent(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	p.Process(&entry, core.RunEvent{Kind: core.EventRunContent, Content: "streamed draft"})
	p.Process(&entry, core.RunEvent{Kind: core.EventRunCompleted, Content: "final text"})

	assert.Equal(t, "final text", entry.Content)
}

func TestAccretion_CompletedWithoutContentKeepsAccreted(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	p.Process(&entry, core.RunEvent{Kind: core.EventRunContent, Content: "kept"})
	p.Process(&entry, core.RunEvent{Kind: core.EventRunCompleted})

	assert.Equal(t, "kept", entry.Content)
}

func TestAccretion_ReasoningSteps(t *testing.T) {
	entry := core.NewAgentMessage()
	p := Accretion{}

	p.Process(&entry, core.RunEvent{Kind: core.EventReasoningStep, Content: "step one"})
	p.Process(&entry, core.RunEvent{Kind: core.EventReasoningStep, Content: "step two"})
	p.Process(&entry, core.RunEvent{Kind: core.EventReasoningDone})

	assert.Equal(t, []string{"step one", "step two"}, entry.ReasoningSteps)
	assert.Empty(t, entry.Content, "reasoning never leaks into content")
}
