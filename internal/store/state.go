// Package store holds the route screen state and maps user actions to the
// backend effects they require.
//
// Reduce is pure: it returns the next State and the effects to run. An
// Executor runs one effect and reports its outcome as another Action, so every
// request ends in exactly one success or failure action. Store drives the
// loop synchronously; the TUI drives the same reducer through tea.Cmds.
package store

import "hikepredict/pkg/types"

// State is everything the route screen renders.
type State struct {
	// Loading is true while an upload or prediction request is in flight.
	Loading bool
	// ErrorMessage is the most recent failure, empty when none.
	ErrorMessage string
	// Prediction is the last estimate in minutes, nil when unset.
	Prediction *float64
	// TrainingItems is never nil.
	TrainingItems []types.TrainingItem
}

// Initial returns the state of a freshly mounted screen.
func Initial() State {
	return State{TrainingItems: []types.TrainingItem{}}
}

// Clone returns a deep copy safe to hand to renderers and listeners.
func (s State) Clone() State {
	out := s
	out.TrainingItems = append(make([]types.TrainingItem, 0, len(s.TrainingItems)), s.TrainingItems...)
	if s.Prediction != nil {
		p := *s.Prediction
		out.Prediction = &p
	}
	return out
}

// Busy reports whether controls that start an upload, prediction or pick are disabled.
func (s State) Busy() bool { return s.Loading }
