package core

// RunStatus is the lifecycle state of the single in-flight run owned by a
// client instance. Transitions are event-driven; exactly one value is live
// per client.
type RunStatus string

const (
	// StatusIdle means no run is in flight.
	StatusIdle RunStatus = "idle"
	// StatusStreaming means a run is consuming the response stream.
	StatusStreaming RunStatus = "streaming"
	// StatusPaused means the server suspended the run pending externally
	// supplied tool results (human-in-the-loop).
	StatusPaused RunStatus = "paused"
	// StatusCancelling means a local cancellation was initiated and cleanup
	// has not yet converged.
	StatusCancelling RunStatus = "cancelling"
)

// Mode selects which event-kind family affects conversation state.
type Mode string

const (
	// ModeAgent processes the non-prefixed event kinds.
	ModeAgent Mode = "agent"
	// ModeTeam processes the Team-prefixed event kinds.
	ModeTeam Mode = "team"
)

// EntryProcessor applies one canonical event to the in-progress conversation
// entry: content accretion, tool-call bookkeeping and terminal-content
// replacement. The run lifecycle machine invokes it for every content-bearing
// event; implementations must be side-effect free beyond the entry itself.
type EntryProcessor interface {
	Process(entry *ChatMessage, ev RunEvent)
}
