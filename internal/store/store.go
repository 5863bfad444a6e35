package store

import "context"

// Store drives Reduce and an Executor synchronously. It is meant for a single
// event loop and is not safe for concurrent Dispatch.
type Store struct {
	state    State
	exec     *Executor
	listener func(State)
}

// Option configures a Store.
type Option func(*Store)

// WithListener registers fn to receive a snapshot after every state change,
// including the intermediate Loading=true state before a request runs.
func WithListener(fn func(State)) Option {
	return func(s *Store) { s.listener = fn }
}

// New returns a store in the Initial state.
func New(exec *Executor, opts ...Option) *Store {
	s := &Store{state: Initial(), exec: exec}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State { return s.state.Clone() }

// Dispatch applies a and runs the resulting effects, feeding their outcome
// actions back until nothing is left to do. It returns the final snapshot.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	queue := []Action{a}
	for len(queue) > 0 {
		act := queue[0]
		queue = queue[1:]
		if act == nil {
			continue
		}
		next, effects := Reduce(s.state, act)
		s.state = next
		if s.listener != nil {
			s.listener(s.state.Clone())
		}
		for _, eff := range effects {
			queue = append(queue, s.exec.Run(ctx, eff))
		}
	}
	return s.State()
}
