package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/hook"
	"github.com/hupe1980/agentbridge/wire"
)

// SendOptions configures one run request.
type SendOptions struct {
	// SessionID continues an existing session instead of starting a new one.
	SessionID string
	// Attachments are media references on the user message. Entries with only
	// a LocalURL are client-side and backfilled after reconciliation.
	Attachments []core.Attachment
}

type runRequest struct {
	Message   string `json:"message"`
	Stream    bool   `json:"stream"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type continueRequest struct {
	Tools     []core.ToolCall `json:"tools"`
	Stream    bool            `json:"stream"`
	SessionID string          `json:"session_id,omitempty"`
}

// Send starts a run and blocks until it reaches a terminal or paused state.
// Incremental updates are delivered through the hook registry while the
// stream is consumed. Invoking Send while a run is in flight is a
// precondition violation reported before any transport call.
func (c *Client) Send(ctx context.Context, message string, optFns ...func(o *SendOptions)) error {
	var so SendOptions
	for _, fn := range optFns {
		fn(&so)
	}

	c.mu.Lock()
	if c.status != core.StatusIdle {
		c.mu.Unlock()
		return core.ErrRunInProgress
	}
	if so.SessionID != "" {
		c.sessionID = so.SessionID
	}
	c.status = core.StatusStreaming
	c.completed = false
	c.sessionNew = false
	c.pausedTools = nil
	runCtx, cancel := context.WithCancel(ctx)
	c.abort = cancel
	sessionID := c.sessionID
	c.mu.Unlock()

	c.store.Append(core.NewUserMessage(message, so.Attachments))
	c.store.Append(core.NewAgentMessage())
	c.emitConversation()

	body := runRequest{Message: message, Stream: true, SessionID: sessionID, UserID: c.userID}
	rc, err := c.caller.Stream(runCtx, http.MethodPost, c.runBasePath(), body)
	if err != nil {
		cancel()
		c.failRun(err)
		return err
	}
	return c.consume(runCtx, rc)
}

// Continue resumes a paused run, posting the externally completed tools and
// consuming the continuation stream. Only supported in agent mode.
func (c *Client) Continue(ctx context.Context, tools []core.ToolCall) error {
	c.mu.Lock()
	if c.mode != core.ModeAgent {
		c.mu.Unlock()
		return core.ErrContinueUnsupported
	}
	if c.status != core.StatusPaused {
		c.mu.Unlock()
		return core.ErrNotPaused
	}
	c.status = core.StatusStreaming
	runID := c.runID
	sessionID := c.sessionID
	runCtx, cancel := context.WithCancel(ctx)
	c.abort = cancel
	c.pausedTools = nil
	c.mu.Unlock()

	body := continueRequest{Tools: tools, Stream: true, SessionID: sessionID}
	path := c.runBasePath() + "/" + url.PathEscape(runID) + "/continue"
	rc, err := c.caller.Stream(runCtx, http.MethodPost, path, body)
	if err != nil {
		cancel()
		c.failRun(err)
		return err
	}
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunContinued, RunID: runID, SessionID: sessionID})
	return c.consume(runCtx, rc)
}

// consume reads the response stream chunk by chunk, feeding the accumulated
// buffer through the frame parser after every read and once more at
// end-of-stream. Canonical events are handled strictly in arrival order.
func (c *Client) consume(ctx context.Context, rc io.ReadCloser) error {
	defer rc.Close()

	var pending string
	buf := make([]byte, c.readBufSize)
	for {
		n, readErr := rc.Read(buf)
		if n > 0 {
			pending += string(buf[:n])
			rest, err := wire.Parse(pending, c.handleEvent)
			if err != nil {
				c.failRun(err)
				return err
			}
			pending = rest
		}
		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF):
			// Flush any final complete frame before closing out the run.
			if _, err := wire.Parse(pending, c.handleEvent); err != nil {
				c.failRun(err)
				return err
			}
			return c.endOfStream(ctx)
		case errors.Is(readErr, context.Canceled) || ctx.Err() != nil:
			// Local abort: cleanup converges in the cancellation path.
			c.finishCancelled()
			return nil
		default:
			c.failRun(readErr)
			return readErr
		}
	}
}

// handleEvent is the lifecycle transition table. Events filtered out by the
// client mode remain observable via the member-activity notification but
// never touch conversation state. Transitions require a streaming run: once
// the run settled, late frames are dropped, except cancellation
// confirmations which converge on the idempotent cleanup path. Unknown kinds
// delegate to the entry processor so forward-compatible server additions are
// tolerated.
func (c *Client) handleEvent(ev core.RunEvent) {
	if !c.inScope(ev.Kind) {
		c.hooks.Emit(hook.Payload{Type: hook.TypeMemberActivity, RunID: ev.RunID, SessionID: ev.SessionID, Event: &ev})
		return
	}
	if c.Status() != core.StatusStreaming {
		if ev.Kind == core.EventRunCancelled || ev.Kind == core.EventTeamRunCancelled {
			c.finishCancelled()
		}
		return
	}
	switch ev.Kind {
	case core.EventRunStarted, core.EventTeamRunStarted,
		core.EventReasoningStart, core.EventTeamReasoningStart:
		c.captureRun(ev)
	case core.EventRunPaused:
		c.pauseRun(ev)
	case core.EventRunContinued:
		// Resumption acknowledged; content follows.
	case core.EventRunCancelled, core.EventTeamRunCancelled:
		// Authoritative: wins any race with a locally initiated abort.
		c.finishCancelled()
	case core.EventRunError, core.EventTeamRunError:
		c.errorRun(ev)
	case core.EventRunCompleted, core.EventTeamRunCompleted:
		c.mu.Lock()
		c.completed = true
		c.mu.Unlock()
		// No state transition yet: final content may still arrive.
		c.applyToEntry(ev)
	default:
		c.applyToEntry(ev)
	}
}

// inScope applies dual-mode filtering: team-prefixed kinds only count in team
// mode, non-prefixed kinds only in agent mode, and a fixed set of kinds is
// mode-independent.
func (c *Client) inScope(k core.EventKind) bool {
	if k.ModeIndependent() {
		return true
	}
	if c.mode == core.ModeTeam {
		return k.IsTeam()
	}
	return !k.IsTeam()
}

// captureRun records the run id and registers a newly seen session.
func (c *Client) captureRun(ev core.RunEvent) {
	c.mu.Lock()
	if ev.RunID != "" {
		c.runID = ev.RunID
	}
	created := false
	if ev.SessionID != "" {
		c.sessionID = ev.SessionID
		if !c.knownSessionLocked(ev.SessionID) {
			c.sessions = append(c.sessions, core.SessionSummary{SessionID: ev.SessionID, CreatedAt: ev.CreatedAt})
			c.sessionNew = true
			created = true
		}
	}
	runID, sessionID := c.runID, c.sessionID
	c.mu.Unlock()

	if created {
		c.hooks.Emit(hook.Payload{Type: hook.TypeSessionCreated, RunID: runID, SessionID: sessionID})
	}
	if ev.Kind == core.EventRunStarted || ev.Kind == core.EventTeamRunStarted {
		c.logger.WithRun(runID).Debug("run started", "session_id", sessionID)
		c.hooks.Emit(hook.Payload{Type: hook.TypeRunStarted, RunID: runID, SessionID: sessionID})
	}
}

func (c *Client) knownSessionLocked(sessionID string) bool {
	for _, s := range c.sessions {
		if s.SessionID == sessionID {
			return true
		}
	}
	return false
}

// pauseRun snapshots the tool calls awaiting external action and suspends.
// Only a streaming run can pause.
func (c *Client) pauseRun(ev core.RunEvent) {
	c.mu.Lock()
	if c.status != core.StatusStreaming {
		c.mu.Unlock()
		return
	}
	c.status = core.StatusPaused
	c.pausedTools = nil
	for _, tc := range ev.Tools {
		c.pausedTools = append(c.pausedTools, tc.Clone())
	}
	runID, sessionID := c.runID, c.sessionID
	tools := append([]core.ToolCall(nil), c.pausedTools...)
	c.mu.Unlock()

	c.logger.WithRun(runID).Debug("run paused", "awaiting_tools", len(tools))
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunPaused, RunID: runID, SessionID: sessionID, Tools: tools})
}

// errorRun terminates the run on a server-reported error, marking the
// in-progress entry and dropping a session registered by this run.
func (c *Client) errorRun(ev core.RunEvent) {
	c.mu.Lock()
	if c.status == core.StatusIdle {
		c.mu.Unlock()
		return
	}
	c.status = core.StatusIdle
	runID := c.runID
	c.runID = ""
	c.completed = false
	sessionID := c.sessionID
	if c.sessionNew {
		c.dropSessionLocked(sessionID)
		c.sessionNew = false
	}
	abort := c.abort
	c.abort = nil
	c.mu.Unlock()

	if abort != nil {
		abort()
	}
	c.store.UpdateLast(func(m *core.ChatMessage) {
		m.StreamingError = true
		if ev.Content != "" {
			m.Content = ev.Content
		}
	})
	c.emitConversation()

	err := fmt.Errorf("run failed: %s", ev.Content)
	c.logger.WithRun(runID).Warn("run errored", "error", ev.Content)
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunError, RunID: runID, SessionID: sessionID, Err: err})
}

func (c *Client) dropSessionLocked(sessionID string) {
	for i, s := range c.sessions {
		if s.SessionID == sessionID {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			return
		}
	}
}

// failRun terminates the run on a transport or parser failure. Errors mark
// the in-progress entry rather than silently vanishing it.
func (c *Client) failRun(err error) {
	c.mu.Lock()
	if c.status == core.StatusIdle {
		c.mu.Unlock()
		return
	}
	c.status = core.StatusIdle
	runID := c.runID
	c.runID = ""
	c.completed = false
	sessionID := c.sessionID
	if c.sessionNew {
		c.dropSessionLocked(sessionID)
		c.sessionNew = false
	}
	abort := c.abort
	c.abort = nil
	c.mu.Unlock()

	if abort != nil {
		abort()
	}
	c.store.UpdateLast(func(m *core.ChatMessage) {
		m.StreamingError = true
		if m.Content == "" {
			m.Content = err.Error()
		}
	})
	c.emitConversation()

	c.logger.WithRun(runID).Error("run failed", "error", err)
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunError, RunID: runID, SessionID: sessionID, Err: err})
}

// endOfStream handles the transport signalling end-of-stream: paused runs
// stay paused awaiting Continue, already-cleaned runs are no-ops, and
// completed runs trigger transcript reconciliation.
func (c *Client) endOfStream(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case core.StatusPaused:
		// The stream is done; the run context is released so Cancel while
		// paused works without it and Continue installs a fresh one.
		abort := c.abort
		c.abort = nil
		c.mu.Unlock()
		if abort != nil {
			abort()
		}
		return nil
	case core.StatusIdle:
		c.mu.Unlock()
		return nil
	case core.StatusCancelling:
		c.mu.Unlock()
		c.finishCancelled()
		return nil
	}
	completed := c.completed
	c.completed = false
	c.status = core.StatusIdle
	runID := c.runID
	c.runID = ""
	sessionID := c.sessionID
	c.sessionNew = false
	abort := c.abort
	c.abort = nil
	c.mu.Unlock()

	// Released after reconciliation: the transcript fetch reuses ctx, which
	// derives from the run context.
	if abort != nil {
		defer abort()
	}

	if !completed {
		c.logger.WithRun(runID).Debug("stream ended without terminal frame")
		return nil
	}
	if err := c.reconcile(ctx, sessionID); err != nil {
		c.logger.WithRun(runID).Warn("transcript refresh failed", "error", err)
		c.hooks.Emit(hook.Payload{Type: hook.TypeTranscriptRefreshFailed, RunID: runID, SessionID: sessionID, Err: err})
	}
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunCompleted, RunID: runID, SessionID: sessionID})
	return nil
}

// applyToEntry delegates a content-bearing event to the entry processor
// against the in-progress agent entry.
func (c *Client) applyToEntry(ev core.RunEvent) {
	updated := c.store.UpdateLast(func(m *core.ChatMessage) {
		if m.Role != core.RoleAgent {
			return
		}
		c.processor.Process(m, ev)
	})
	if updated {
		c.emitConversation()
	}
}
