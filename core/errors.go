package core

import "errors"

var (
	// ErrRunInProgress is returned when Send is invoked while a run is
	// already streaming, paused or cancelling. The violation is reported
	// before any transport call is made; runs are never queued.
	ErrRunInProgress = errors.New("agentbridge: a run is already in progress")

	// ErrNoActiveRun is returned by Cancel when no run is in flight.
	ErrNoActiveRun = errors.New("agentbridge: no active run")

	// ErrNotPaused is returned by Continue when the run is not paused.
	ErrNotPaused = errors.New("agentbridge: run is not paused")

	// ErrContinueUnsupported is returned by Continue in team mode, which has
	// no continue endpoint.
	ErrContinueUnsupported = errors.New("agentbridge: continue is not supported in team mode")
)
