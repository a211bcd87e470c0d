package eventfsm

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Machine is the runtime FSM instance. It exposes one entry point per event
// name declared anywhere in its table.
type Machine struct {
	id      string
	initial StateID

	// Compiled registry, immutable after New
	states     map[StateID]*State
	order      []StateID
	entries    map[EventID]*entryPoint
	eventOrder []EventID
	hooks      map[EventID]eventHooks

	mu            sync.RWMutex
	currentState  *State
	previousState *State
	observers     []Observer

	data   any
	logger *slog.Logger
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*Machine)

// WithInitial sets the starting state, overriding the table's
func WithInitial(id StateID) MachineOption {
	return func(m *Machine) {
		m.initial = id
	}
}

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithData sets the application data accessible via Context
func WithData(data any) MachineOption {
	return func(m *Machine) {
		m.data = data
	}
}

// WithObserver binds an observer at construction
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) {
		m.Bind(o)
	}
}

// WithID overrides the generated machine id
func WithID(id string) MachineOption {
	return func(m *Machine) {
		m.id = id
	}
}

// New compiles a state table into a machine. src may be a *Table, a
// map[StateID]Events, or a factory (func() *Table, TableFunc) producing one.
// Any other source, or a table without states, yields a *ConfigurationError.
func New(src any, opts ...MachineOption) (*Machine, error) {
	t, err := tableFrom(src)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		id:     uuid.NewString(),
		logger: Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = Logger
	}
	m.logger = m.logger.With("fsm", m.id)

	if err := m.compile(t, m.initial); err != nil {
		return nil, err
	}

	m.logger.Debug("machine compiled", "states", len(m.states), "events", len(m.entries), "initial", m.currentState.name)
	return m, nil
}

// MustNew is like New but panics on error
func MustNew(src any, opts ...MachineOption) *Machine {
	m, err := New(src, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// ID returns the machine's identifier
func (m *Machine) ID() string {
	return m.id
}

func (m *Machine) current() *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// State returns the name of the current state
func (m *Machine) State() StateID {
	return m.current().name
}

// PreviousState returns the state left by the last committed transition,
// or "" before the first one
func (m *Machine) PreviousState() StateID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.previousState == nil {
		return ""
	}
	return m.previousState.name
}

// Events returns the events defined by the current state only
func (m *Machine) Events() []EventID {
	return m.current().Events()
}

// AllEvents returns every event name the machine has an entry point for
func (m *Machine) AllEvents() []EventID {
	return slices.Clone(m.eventOrder)
}

// States returns all state names in declaration order
func (m *Machine) States() []StateID {
	return slices.Clone(m.order)
}

// Lookup returns the compiled state with the given name
func (m *Machine) Lookup(name StateID) (*State, bool) {
	s, ok := m.states[name]
	return s, ok
}

// Is reports whether id is the current state
func (m *Machine) Is(id StateID) bool {
	return m.State() == id
}

// Can reports whether the current state defines event
func (m *Machine) Can(event EventID) bool {
	return m.current().Handles(event)
}

// commit resolves a handler outcome and applies it: after hook, state
// update, enter and leave hooks, then observers. Enter and leave run for
// every GoTo outcome, including one naming the current state; Stay skips them.
func (m *Machine) commit(event EventID, hooks eventHooks, o Outcome) (any, error) {
	current := m.current()
	next, result, err := m.resolve(event, current, o)
	if err != nil {
		m.logger.Debug("transition rejected", "event", event, "state", current.name, "outcome", o.String(), "error", err)
		return nil, err
	}

	if err := runHook(hooks.after, event, current.name, next.name); err != nil {
		return nil, fmt.Errorf("after hook for %s: %w", event, err)
	}

	m.mu.Lock()
	prev := m.currentState
	if o.kind == outcomeStay {
		// the state may have moved while the after hook ran
		next = prev
	}
	m.currentState = next
	m.previousState = prev
	m.mu.Unlock()

	m.logger.Debug("state committed", "event", event, "from", prev.name, "to", next.name)

	if o.kind != outcomeStay {
		if err := runHook(next.onEnter, event, prev.name, next.name); err != nil {
			return nil, fmt.Errorf("enter hook for %s: %w", next.name, err)
		}
		if err := runHook(prev.onLeave, event, prev.name, next.name); err != nil {
			return nil, fmt.Errorf("leave hook for %s: %w", prev.name, err)
		}
	}

	if err := m.notify(event, prev.name, next.name); err != nil {
		return nil, err
	}
	return result, nil
}

// makeContext creates a context for handlers
func (m *Machine) makeContext(event EventID, owner *State, args []any) *Context {
	return &Context{
		FSM:    m,
		Event:  event,
		State:  owner,
		Args:   args,
		Data:   m.data,
		Logger: m.logger,
	}
}
