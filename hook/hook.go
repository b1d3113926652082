// Package hook delivers named engine notifications to any number of
// subscribed listeners. Emission is fire-and-forget: listeners run
// synchronously in registration order, cannot apply back-pressure, and a
// panicking listener is recovered and logged without affecting the others.
package hook

import (
	"sync"

	"github.com/hupe1980/agentbridge/core"
	"github.com/hupe1980/agentbridge/logging"
)

// Type names an engine notification.
type Type string

const (
	// TypeConversationUpdated fires whenever the transcript changes.
	TypeConversationUpdated Type = "conversation_updated"
	// TypeRunStarted fires when the server acknowledges a run.
	TypeRunStarted Type = "run_started"
	// TypeRunPaused fires when the run suspends awaiting external tool results.
	TypeRunPaused Type = "run_paused"
	// TypeRunContinued fires when a paused run resumes.
	TypeRunContinued Type = "run_continued"
	// TypeRunCompleted fires after a run ends successfully (post reconciliation).
	TypeRunCompleted Type = "run_completed"
	// TypeRunCancelled fires exactly once per cancelled run.
	TypeRunCancelled Type = "run_cancelled"
	// TypeRunError fires when a run terminates with an error.
	TypeRunError Type = "run_error"
	// TypeSessionCreated fires when a run registers a previously unseen session.
	TypeSessionCreated Type = "session_created"
	// TypeMemberActivity carries events filtered out by the client mode,
	// observable for diagnostics without touching conversation state.
	TypeMemberActivity Type = "member_activity"
	// TypeTranscriptRefreshFailed fires when the authoritative transcript
	// fetch fails after a completed run; the local transcript is kept.
	TypeTranscriptRefreshFailed Type = "transcript_refresh_failed"
)

// Payload carries the notification context. Fields are populated per type;
// absent ones are zero.
type Payload struct {
	Type      Type
	RunID     string
	SessionID string
	Event     *core.RunEvent
	Message   *core.ChatMessage
	Tools     []core.ToolCall
	Err       error
}

// Func is a notification listener.
type Func func(p Payload)

// Registry fans notifications out to listeners. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	logger logging.Logger
	byType map[Type][]Func
	any    []Func
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{logger: logger, byType: make(map[Type][]Func)}
}

// On subscribes fn to one notification type.
func (r *Registry) On(t Type, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = append(r.byType[t], fn)
}

// OnAny subscribes fn to every notification.
func (r *Registry) OnAny(fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.any = append(r.any, fn)
}

// Emit delivers p to all matching listeners.
func (r *Registry) Emit(p Payload) {
	r.mu.RLock()
	listeners := make([]Func, 0, len(r.byType[p.Type])+len(r.any))
	listeners = append(listeners, r.byType[p.Type]...)
	listeners = append(listeners, r.any...)
	r.mu.RUnlock()

	for _, fn := range listeners {
		r.call(fn, p)
	}
}

func (r *Registry) call(fn Func, p Payload) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("hook listener panicked", "type", string(p.Type), "panic", rec)
		}
	}()
	fn(p)
}
