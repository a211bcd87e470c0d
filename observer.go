package eventfsm

import (
	"reflect"
	"slices"
)

// Observer is notified after every committed transition, including ones
// that stay in the same state.
type Observer interface {
	Notify(event EventID, from, to StateID) error
}

type observerFunc struct {
	fn func(event EventID, from, to StateID) error
}

func (o *observerFunc) Notify(event EventID, from, to StateID) error {
	return o.fn(event, from, to)
}

// ObserverFunc wraps fn as an Observer. Each call returns a distinct
// observer; keep the returned value to Unbind it later.
func ObserverFunc(fn func(event EventID, from, to StateID) error) Observer {
	return &observerFunc{fn: fn}
}

// Bind appends o to the observer list. The same observer may be bound more
// than once and is then notified once per binding.
func (m *Machine) Bind(o Observer) *Machine {
	if o == nil {
		return m
	}
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()
	return m
}

// Unbind removes every binding of each given observer, or all observers when
// called without arguments.
func (m *Machine) Unbind(observers ...Observer) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(observers) == 0 {
		m.observers = nil
		return m
	}
	m.observers = slices.DeleteFunc(m.observers, func(bound Observer) bool {
		return slices.ContainsFunc(observers, func(o Observer) bool {
			return sameObserver(bound, o)
		})
	})
	return m
}

// notify calls a snapshot of the observers; observers binding or unbinding
// during notification take effect from the next transition.
func (m *Machine) notify(event EventID, from, to StateID) error {
	m.mu.RLock()
	snapshot := slices.Clone(m.observers)
	m.mu.RUnlock()

	for _, o := range snapshot {
		if err := o.Notify(event, from, to); err != nil {
			return err
		}
	}
	return nil
}

// sameObserver compares observers without panicking on uncomparable dynamic types
func sameObserver(a, b Observer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
