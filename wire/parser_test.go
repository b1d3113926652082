package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/internal/testutil"
)

func collect(t *testing.T, buf string) ([]core.RunEvent, string) {
	t.Helper()
	var events []core.RunEvent
	rest, err := Parse(buf, func(ev core.RunEvent) { events = append(events, ev) })
	require.NoError(t, err)
	return events, rest
}

func TestParse_SingleLegacyFrame(t *testing.T) {
	frame := testutil.Frame("RunContent", map[string]any{
		"run_id":     "r-1",
		"session_id": "s-1",
		"content":    "hello",
	})

	events, rest := collect(t, frame)

	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, core.EventRunContent, events[0].Kind)
	assert.Equal(t, "r-1", events[0].RunID)
	assert.Equal(t, "s-1", events[0].SessionID)
	assert.Equal(t, "hello", events[0].Content)
}

func TestParse_EnvelopedForms(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"structured data", testutil.Enveloped("RunContent", map[string]any{"content": "hi", "run_id": "r-2"})},
		{"json string data", testutil.EnvelopedString("RunContent", map[string]any{"content": "hi", "run_id": "r-2"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, rest := collect(t, tt.frame)

			require.Len(t, events, 1)
			assert.Empty(t, rest)
			assert.Equal(t, core.EventRunContent, events[0].Kind)
			assert.Equal(t, "hi", events[0].Content)
			assert.Equal(t, "r-2", events[0].RunID)
		})
	}
}

func TestParse_WireFormIsInvisibleDownstream(t *testing.T) {
	legacy := `{"event":"X","foo":1}`
	enveloped := `{"event":"Y","data":"{\"bar\":2}"}`

	events, _ := collect(t, legacy+enveloped)

	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Get("foo").Int())
	assert.Equal(t, int64(2), events[1].Get("bar").Int())
}

func TestParse_ChunkingInvariance(t *testing.T) {
	frames := testutil.JoinFrames(
		testutil.Frame("RunStarted", map[string]any{"run_id": "r-1", "session_id": "s-1"}),
		testutil.Frame("RunContent", map[string]any{"content": `with "quotes" and {braces} inside`}),
		testutil.Enveloped("ToolCallStarted", map[string]any{"tool": map[string]any{"tool_call_id": "t-1", "tool_name": "search"}}),
		testutil.Frame("RunCompleted", map[string]any{"run_id": "r-1"}),
	)

	var want []core.RunEvent
	_, err := Parse(frames, func(ev core.RunEvent) { want = append(want, ev) })
	require.NoError(t, err)
	require.Len(t, want, 4)

	for _, size := range []int{1, 2, 3, 7, 16, 64, len(frames)} {
		var got []core.RunEvent
		buffer := ""
		for _, chunk := range testutil.SplitEvery(frames, size) {
			buffer += chunk
			buffer, err = Parse(buffer, func(ev core.RunEvent) { got = append(got, ev) })
			require.NoError(t, err)
		}
		buffer, err = Parse(buffer, func(ev core.RunEvent) { got = append(got, ev) })
		require.NoError(t, err)

		assert.Empty(t, buffer, "chunk size %d", size)
		require.Len(t, got, len(want), "chunk size %d", size)
		for i := range want {
			assert.Equal(t, want[i], got[i], "chunk size %d event %d", size, i)
		}
	}
}

func TestParse_IncompleteFrameIsRequeued(t *testing.T) {
	frame := testutil.Frame("RunContent", map[string]any{"content": "partial"})
	head := frame[:len(frame)-5]

	events, rest := collect(t, head)

	assert.Empty(t, events)
	assert.Equal(t, head, rest)

	// Completing the buffer yields the frame.
	events, rest = collect(t, rest+frame[len(frame)-5:])
	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, "partial", events[0].Content)
}

func TestParse_MalformedFrameIsSkipped(t *testing.T) {
	valid := testutil.Frame("RunContent", map[string]any{"content": "ok"})

	events, rest := collect(t, `{"event":"X",}`+valid)

	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, "ok", events[0].Content)
}

func TestParse_OversizedMalformedSpanIsFatal(t *testing.T) {
	big := `{"event":"X",` + strings.Repeat(" ", MaxMalformedSpan) + `}`

	var events []core.RunEvent
	_, err := Parse(big, func(ev core.RunEvent) { events = append(events, ev) })

	require.Error(t, err)
	var tooLarge *FrameTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Greater(t, tooLarge.Size, MaxMalformedSpan)
	assert.Empty(t, events)
}

func TestParse_BracesInsideStringsIgnored(t *testing.T) {
	frame := `{"event":"RunContent","content":"a } b { c \" d"}`

	events, rest := collect(t, frame)

	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, `a } b { c " d`, events[0].Content)
}

func TestParse_NestedDataParseFailureYieldsEmptyPayload(t *testing.T) {
	frame := `{"event":"RunContent","data":"not json"}`

	events, rest := collect(t, frame)

	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, core.EventRunContent, events[0].Kind)
	assert.Empty(t, events[0].Content)
}

func TestParse_ToolDecoding(t *testing.T) {
	frame := testutil.Frame("ToolCallCompleted", map[string]any{
		"tool": map[string]any{
			"tool_call_id":    "t-9",
			"tool_name":       "lookup",
			"tool_args":       map[string]any{"q": "go"},
			"content":         "result",
			"tool_call_error": true,
		},
	})

	events, _ := collect(t, frame)

	require.Len(t, events, 1)
	tool := events[0].Tool
	require.NotNil(t, tool)
	assert.Equal(t, "t-9", tool.ToolCallID)
	assert.Equal(t, "lookup", tool.ToolName)
	assert.Equal(t, map[string]any{"q": "go"}, tool.ToolArgs)
	assert.Equal(t, "result", tool.Content)
	assert.True(t, tool.ToolCallError)
}

func TestParse_InterFrameNoiseIsTolerated(t *testing.T) {
	frames := "\n\n" + testutil.Frame("RunContent", map[string]any{"content": "a"}) + "\n" +
		testutil.Frame("RunContent", map[string]any{"content": "b"}) + "\n"

	events, _ := collect(t, frames)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Content)
	assert.Equal(t, "b", events[1].Content)
}
