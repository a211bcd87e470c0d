package eventfsm

import "log/slog"

// Context is passed to handlers and gives them access to the machine's
// state registry
type Context struct {
	FSM    *Machine
	Event  EventID
	State  *State // state whose handler is running
	Args   []any
	Data   any // User-provided application data
	Logger *slog.Logger
}

// Lookup returns a state of the machine by name, e.g. to reuse a sibling
// state's handler or to return GoToState
func (c *Context) Lookup(name StateID) (*State, bool) {
	return c.FSM.Lookup(name)
}

// CurrentState returns the current active state
func (c *Context) CurrentState() StateID {
	return c.FSM.State()
}

// Fire invokes another event on the machine
func (c *Context) Fire(event EventID, args ...any) *Future[any] {
	return c.FSM.Fire(event, args...)
}
