package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/hook"
	"github.com/hupe1980/agentbridge/internal/testutil"
)

func TestReconcile_AnnotationsSurvive(t *testing.T) {
	fs := newFakeService(t)
	fs.runBody = streamFrames(
		testutil.Frame("RunStarted", map[string]any{"run_id": "r-1", "session_id": "s-1"}),
		testutil.Frame("ToolCallStarted", map[string]any{"tool": map[string]any{"tool_call_id": "t-1", "tool_name": "chart"}}),
		testutil.Frame("ToolCallCompleted", map[string]any{"tool": map[string]any{"tool_call_id": "t-1", "tool_name": "chart", "content": "rendered"}}),
		testutil.Frame("RunCompleted", map[string]any{"run_id": "r-1", "content": "done"}),
	)
	fs.runsJSON = func() []core.RunRecord {
		return []core.RunRecord{{
			RunID:   "r-1",
			Input:   "hi",
			Content: "done",
			Tools:   []core.ToolCall{{ToolCallID: "t-1", ToolName: "chart", Content: "rendered"}},
		}}
	}

	c := newTestClient(t, fs.server.URL)
	// Annotation arrives before the tool call exists: parked, applied on
	// arrival, and spliced back after reconciliation.
	c.AnnotateToolCall("t-1", core.UIAnnotation{Component: "bar-chart"})

	require.NoError(t, c.Send(context.Background(), "hi"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	require.Len(t, msgs[1].ToolCalls, 1)
	require.NotNil(t, msgs[1].ToolCalls[0].Annotation)
	assert.Equal(t, "bar-chart", msgs[1].ToolCalls[0].Annotation.Component)
}

func TestReconcile_AttachmentBackfill(t *testing.T) {
	fs := newFakeService(t)
	fs.runBody = streamFrames(
		testutil.Frame("RunStarted", map[string]any{"run_id": "r-1", "session_id": "s-1"}),
		testutil.Frame("RunCompleted", map[string]any{"run_id": "r-1", "content": "ok"}),
	)
	fs.runsJSON = func() []core.RunRecord {
		// The server does not echo client-only attachment references.
		return []core.RunRecord{{RunID: "r-1", Input: "look at this", Content: "ok"}}
	}

	c := newTestClient(t, fs.server.URL)
	att := core.Attachment{Name: "photo.png", MimeType: "image/png", LocalURL: "blob:local-1"}
	require.NoError(t, c.Send(context.Background(), "look at this", func(o *SendOptions) {
		o.Attachments = []core.Attachment{att}
	}))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "blob:local-1", msgs[0].Attachments[0].LocalURL)
}

func TestReconcile_ServerAttachmentsNotOverwritten(t *testing.T) {
	fs := newFakeService(t)
	fs.runBody = streamFrames(
		testutil.Frame("RunStarted", map[string]any{"run_id": "r-1", "session_id": "s-1"}),
		testutil.Frame("RunCompleted", map[string]any{"run_id": "r-1", "content": "ok"}),
	)
	fs.runsJSON = func() []core.RunRecord {
		return []core.RunRecord{{
			RunID:       "r-1",
			Input:       "look",
			Content:     "ok",
			Attachments: []core.Attachment{{Name: "photo.png", URL: "https://cdn/photo.png"}},
		}}
	}

	c := newTestClient(t, fs.server.URL)
	require.NoError(t, c.Send(context.Background(), "look", func(o *SendOptions) {
		o.Attachments = []core.Attachment{{Name: "photo.png", LocalURL: "blob:local-1"}}
	}))

	msgs := c.Messages()
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "https://cdn/photo.png", msgs[0].Attachments[0].URL)
	assert.Empty(t, msgs[0].Attachments[0].LocalURL)
}

func TestReconcile_FetchFailureKeepsLocalTranscript(t *testing.T) {
	fs := newFakeService(t)
	fs.runBody = streamFrames(
		testutil.Frame("RunStarted", map[string]any{"run_id": "r-1", "session_id": "s-failing"}),
		testutil.Frame("RunContent", map[string]any{"content": "streamed text"}),
		testutil.Frame("RunCompleted", map[string]any{"run_id": "r-1"}),
	)
	fs.mux.HandleFunc("GET /sessions/s-failing/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newTestClient(t, fs.server.URL)
	var refreshFailed int
	c.On(hook.TypeTranscriptRefreshFailed, func(p hook.Payload) {
		refreshFailed++
		assert.Error(t, p.Err)
	})
	var completed int
	c.On(hook.TypeRunCompleted, func(hook.Payload) { completed++ })

	require.NoError(t, c.Send(context.Background(), "hi"))

	assert.Equal(t, 1, refreshFailed)
	assert.Equal(t, 1, completed)
	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "streamed text", msgs[1].Content, "local transcript stays in place")
}

func TestRunRecordsToMessages(t *testing.T) {
	records := []core.RunRecord{
		{RunID: "r-1", Input: "q1", Content: "a1", Tools: []core.ToolCall{{ToolCallID: "t-1"}}},
		{RunID: "r-2", Input: "q2", Content: "a2"},
	}

	msgs := RunRecordsToMessages(records)

	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "q1", msgs[0].Content)
	assert.Equal(t, core.RoleAgent, msgs[1].Role)
	assert.Equal(t, "a1", msgs[1].Content)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "q2", msgs[2].Content)
}
