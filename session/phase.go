package session

import (
	"time"

	"github.com/picfetch/picfetch/decode"
)

// State is the lifecycle state of a load session
type State int

const (
	// Empty means no data is available yet, or the reference is absent
	Empty State = iota
	// Success means the load attempt produced a decoded artifact
	Success
	// Failure means the load attempt failed
	Failure
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}

	return "unknown"
}

// Phase is the observable load lifecycle state.
// Exactly one state is active at any observation point; Artifact is
// set for Success and Err for Failure.
type Phase struct {
	State    State
	Artifact *decode.Artifact
	Err      error
}

// Transition describes the visual transition the presentation layer
// should apply when a phase is committed
type Transition struct {
	Name     string
	Duration time.Duration
}

// PhaseFunc receives each committed phase.
// A nil transition means the update is instantaneous and should be
// rendered without the configured transition wrapper.
// The observer runs outside the session lock, so it may call back
// into the session, e.g. to read the current phase.
type PhaseFunc func(phase Phase, transition *Transition)
