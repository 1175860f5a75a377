// Package health tracks whether the predictor capability was loaded at
// process start. The state is set exactly once and is read-only afterwards;
// there is no reload or hot-swap.
package health

import "time"

// State is the process-wide readiness flag.
type State struct {
	loaded bool
}

// NewState captures the startup outcome: true when the model artifact was
// loaded, false when loading failed or was never attempted.
func NewState(loaded bool) *State {
	return &State{loaded: loaded}
}

// Loaded reports whether the predictor capability is available.
func (s *State) Loaded() bool { return s.loaded }

// Status is the readiness payload. Producing it never touches the predictor.
type Status struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// Snapshot returns the readiness payload with the current UTC timestamp.
func (s *State) Snapshot() Status {
	status := "unhealthy"
	if s.loaded {
		status = "healthy"
	}
	return Status{
		Status:      status,
		ModelLoaded: s.loaded,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}
