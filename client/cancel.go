package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/hook"
)

// Cancel ends the in-flight run. The local transport is aborted immediately
// so no further bytes are processed, a best-effort cancellation notification
// is sent to the remote service, and cleanup converges with a possibly racing
// server-confirmed RunCancelled frame on exactly one idempotent path.
func (c *Client) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.status != core.StatusStreaming && c.status != core.StatusPaused {
		c.mu.Unlock()
		return core.ErrNoActiveRun
	}
	c.status = core.StatusCancelling
	runID := c.runID
	abort := c.abort
	c.abort = nil
	c.mu.Unlock()

	if abort != nil {
		abort()
	}
	if runID != "" {
		// Best effort: the remote run may keep going if this fails, but
		// local state is cleaned up regardless.
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyWait)
		defer cancel()
		path := c.runBasePath() + "/" + url.PathEscape(runID) + "/cancel"
		if err := c.caller.Unary(nctx, http.MethodPost, path, nil, nil); err != nil {
			c.logger.WithRun(runID).Warn("cancel notification failed", "error", err)
		}
	}
	c.finishCancelled()
	return nil
}

// finishCancelled is the single cleanup routine both cancellation triggers
// converge on. The first caller performs cleanup and emits the cancellation
// notification; any later caller finds the run already idle and is a no-op.
func (c *Client) finishCancelled() {
	c.mu.Lock()
	if c.status == core.StatusIdle {
		c.mu.Unlock()
		return
	}
	c.status = core.StatusIdle
	runID := c.runID
	c.runID = ""
	sessionID := c.sessionID
	c.completed = false
	c.sessionNew = false
	c.pausedTools = nil
	abort := c.abort
	c.abort = nil
	c.mu.Unlock()

	if abort != nil {
		abort()
	}
	c.store.UpdateLast(func(m *core.ChatMessage) {
		m.Cancelled = true
	})
	c.emitConversation()

	c.logger.WithRun(runID).Debug("run cancelled")
	c.hooks.Emit(hook.Payload{Type: hook.TypeRunCancelled, RunID: runID, SessionID: sessionID})
}
