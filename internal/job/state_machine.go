// Package job runs the system's periodic work: ingestion cycles, frontier
// batches, and catalog maintenance. A small state machine and an in-process
// registry keep overlapping runs of the same job from executing concurrently.
package job

import "fmt"

// State represents a job state in the state machine.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// ValidateTransition checks if a state transition is valid.
// Returns an error if the transition is not allowed.
func ValidateTransition(from, to State) error {
	validTransitions := map[State][]State{
		StateIdle: {
			StateRunning, // Trigger fired and the job slot was free
		},
		StateRunning: {
			StateSucceeded, // Run finished cleanly
			StateFailed,    // Run returned an error or panicked
		},
		StateSucceeded: {
			StateIdle, // Outcome recorded, job eligible again
		},
		StateFailed: {
			StateIdle, // Outcome recorded, job eligible again
		},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}

	for _, allowed := range allowedStates {
		if allowed == to {
			return nil
		}
	}

	return fmt.Errorf("invalid state transition from %s to %s", from, to)
}

// IsBusyState checks if a job in this state must refuse a new trigger.
func IsBusyState(state State) bool {
	return state == StateRunning
}
