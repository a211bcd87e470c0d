package eventfsm

import "slices"

// Handler runs when its event is fired while its state is current.
// Returning nil is the same as returning Resolved(Stay()).
type Handler func(c *Context, args ...any) *Future[Outcome]

// Func adapts a synchronous handler
func Func(fn func(c *Context, args ...any) Outcome) Handler {
	return func(c *Context, args ...any) *Future[Outcome] {
		return Resolved(fn(c, args...))
	}
}

// Target returns a handler that always moves to the named state
func Target(name StateID) Handler {
	return func(*Context, ...any) *Future[Outcome] {
		return Resolved(GoTo(name))
	}
}

// State is a compiled state: a name and the handlers for the events it accepts
type State struct {
	name     StateID
	handlers map[EventID]Handler
	events   []EventID // declaration order

	onEnter Hook
	onLeave Hook
}

// Name returns the state's name
func (s *State) Name() StateID {
	return s.name
}

// Events returns the events this state defines, in declaration order
func (s *State) Events() []EventID {
	return slices.Clone(s.events)
}

// Handler returns the handler this state uses for event
func (s *State) Handler(event EventID) (Handler, bool) {
	h, ok := s.handlers[event]
	return h, ok
}

// Handles reports whether the state defines event
func (s *State) Handles(event EventID) bool {
	_, ok := s.handlers[event]
	return ok
}
