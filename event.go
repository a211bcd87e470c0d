package eventfsm

import "fmt"

// EventFunc is the entry point for one event name. It always returns a
// future: the machine itself when the current state ignores the event, or
// the result of the handler once its outcome has been committed.
type EventFunc func(args ...any) *Future[any]

// entryPoint is compiled once per (state, event) pair. Entry points for the
// same event name form a chain, the most recently compiled state outermost.
type entryPoint struct {
	event EventID
	owner *State
	prev  *entryPoint
}

func (e *entryPoint) call(m *Machine, args []any) *Future[any] {
	if m.current() != e.owner {
		if e.prev != nil {
			return e.prev.call(m, args)
		}
		m.logger.Debug("event not handled in current state", "event", e.event, "state", m.State())
		return Resolved[any](m)
	}
	return m.dispatch(e, args)
}

// Event returns the entry point for event
func (m *Machine) Event(event EventID) (EventFunc, bool) {
	e, ok := m.entries[event]
	if !ok {
		return nil, false
	}
	return func(args ...any) *Future[any] {
		return e.call(m, args)
	}, true
}

// Fire invokes the entry point for event with args
func (m *Machine) Fire(event EventID, args ...any) *Future[any] {
	e, ok := m.entries[event]
	if !ok {
		return Failed[any](fmt.Errorf("%w: %q", ErrUnknownEvent, event))
	}
	return e.call(m, args)
}

// dispatch runs the before hook and the owning state's handler, then commits
// the handler's outcome once it settles.
func (m *Machine) dispatch(e *entryPoint, args []any) *Future[any] {
	from := e.owner
	hooks := m.hooks[e.event]

	m.logger.Debug("processing event", "event", e.event, "state", from.name)

	if err := runHook(hooks.before, e.event, from.name, from.name); err != nil {
		return Failed[any](fmt.Errorf("before hook for %s: %w", e.event, err))
	}

	reply := from.handlers[e.event](m.makeContext(e.event, from, args), args...)
	if reply == nil {
		reply = Resolved(Stay())
	}

	result := NewPromise[any]()
	reply.onSettle(func(o Outcome, err error) {
		if err != nil {
			m.logger.Debug("handler failed", "event", e.event, "state", from.name, "error", err)
			result.Fail(fmt.Errorf("handler for %s in state %s: %w", e.event, from.name, err))
			return
		}
		value, err := m.commit(e.event, hooks, o)
		if err != nil {
			result.Fail(err)
			return
		}
		result.Complete(value)
	})
	return result.Future()
}
