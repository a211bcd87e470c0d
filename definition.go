package eventfsm

import (
	"errors"
	"fmt"
	"sort"
)

// Events maps event names to what a state does with them. Values may be a
// Handler, a func(*Context, ...any) *Future[Outcome], a
// func(*Context, ...any) Outcome, or a StateID/string naming the state to
// move to unconditionally.
type Events map[EventID]any

type eventDecl struct {
	event EventID
	value any
}

type stateDecl struct {
	name   StateID
	events []eventDecl
}

// Table holds the declared states, events and hooks before building a Machine
type Table struct {
	states  []stateDecl
	index   map[StateID]int
	hooks   []hookDecl
	initial StateID
	errs    []error
}

// TableFunc produces a table on demand. It is invoked once per New call.
type TableFunc func() (*Table, error)

// NewTable creates an empty state table builder
func NewTable() *Table {
	return &Table{index: make(map[StateID]int)}
}

// State declares a state and its events. Events are compiled in sorted
// order; use table files when declaration order matters.
func (t *Table) State(name StateID, events Events) *Table {
	keys := make([]EventID, 0, len(events))
	for ev := range events {
		keys = append(keys, ev)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	decls := make([]eventDecl, 0, len(keys))
	for _, ev := range keys {
		decls = append(decls, eventDecl{event: ev, value: events[ev]})
	}
	return t.addState(name, decls)
}

func (t *Table) addState(name StateID, events []eventDecl) *Table {
	if t.index == nil {
		t.index = make(map[StateID]int)
	}
	if _, dup := t.index[name]; dup {
		t.errs = append(t.errs, fmt.Errorf("state %q declared more than once", name))
		return t
	}
	t.index[name] = len(t.states)
	t.states = append(t.states, stateDecl{name: name, events: events})
	return t
}

// Initial sets the state the machine starts in
func (t *Table) Initial(name StateID) *Table {
	t.initial = name
	return t
}

// Hook registers a lifecycle hook by conventional name: onbefore<Event>,
// onafter<Event>, on<Event>, onenter<State>, on<State> or onleave<State>.
// Names that match no event or state fail construction.
func (t *Table) Hook(name string, fn Hook) *Table {
	return t.addHook(hookNamed, name, fn)
}

// Before registers the hook run before event's handler
func (t *Table) Before(event EventID, fn Hook) *Table {
	return t.addHook(hookBefore, string(event), fn)
}

// After registers the hook run after event's handler resolves, before commit
func (t *Table) After(event EventID, fn Hook) *Table {
	return t.addHook(hookAfter, string(event), fn)
}

// Enter registers the hook run when the machine moves into state
func (t *Table) Enter(state StateID, fn Hook) *Table {
	return t.addHook(hookEnter, string(state), fn)
}

// Leave registers the hook run when the machine moves out of state
func (t *Table) Leave(state StateID, fn Hook) *Table {
	return t.addHook(hookLeave, string(state), fn)
}

func (t *Table) addHook(kind hookKind, name string, fn Hook) *Table {
	if fn == nil {
		t.errs = append(t.errs, fmt.Errorf("hook %q is nil", name))
		return t
	}
	t.hooks = append(t.hooks, hookDecl{kind: kind, name: name, fn: fn})
	return t
}

// States returns the declared state names in declaration order
func (t *Table) States() []StateID {
	out := make([]StateID, 0, len(t.states))
	for _, s := range t.states {
		out = append(out, s.name)
	}
	return out
}

// tableFrom normalises the sources New accepts into a table
func tableFrom(src any) (*Table, error) {
	switch v := src.(type) {
	case nil:
		return nil, configErrorf("state table is nil")
	case *Table:
		if v == nil {
			return nil, configErrorf("state table is nil")
		}
		return v, nil
	case Table:
		return &v, nil
	case func() *Table:
		t := v()
		if t == nil {
			return nil, configErrorf("state table factory returned nil")
		}
		return t, nil
	case TableFunc:
		return callTableFunc(v)
	case func() (*Table, error):
		return callTableFunc(v)
	case map[StateID]Events:
		return tableFromMap(v), nil
	case map[string]Events:
		m := make(map[StateID]Events, len(v))
		for k, e := range v {
			m[StateID(k)] = e
		}
		return tableFromMap(m), nil
	default:
		return nil, configErrorf("state table must be a mapping of states, got %T", src)
	}
}

func callTableFunc(fn func() (*Table, error)) (*Table, error) {
	t, err := fn()
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &ConfigurationError{Reason: "state table factory failed", Err: err}
	}
	if t == nil {
		return nil, configErrorf("state table factory returned nil")
	}
	return t, nil
}

func tableFromMap(src map[StateID]Events) *Table {
	names := make([]StateID, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	t := NewTable()
	for _, name := range names {
		t.State(name, src[name])
	}
	return t
}

// toHandler converts a declared event value into a handler
func toHandler(v any) (Handler, error) {
	switch h := v.(type) {
	case Handler:
		if h == nil {
			return nil, errors.New("nil handler")
		}
		return h, nil
	case func(*Context, ...any) *Future[Outcome]:
		if h == nil {
			return nil, errors.New("nil handler")
		}
		return h, nil
	case func(*Context, ...any) Outcome:
		if h == nil {
			return nil, errors.New("nil handler")
		}
		return Func(h), nil
	case StateID:
		return Target(h), nil
	case string:
		return Target(StateID(h)), nil
	case nil:
		return nil, errors.New("nil handler")
	default:
		return nil, fmt.Errorf("unsupported handler type %T", v)
	}
}

// compile builds the registry, entry point chains and hook slots of m
func (m *Machine) compile(t *Table, initial StateID) error {
	if len(t.errs) > 0 {
		return &ConfigurationError{Reason: "malformed state table", Err: errors.Join(t.errs...)}
	}
	if len(t.states) == 0 {
		return configErrorf("state table declares no states")
	}

	m.states = make(map[StateID]*State, len(t.states))
	m.entries = make(map[EventID]*entryPoint)

	for _, decl := range t.states {
		s := &State{
			handlers: make(map[EventID]Handler, len(decl.events)),
			events:   make([]EventID, 0, len(decl.events)),
		}
		for _, ev := range decl.events {
			if s.Handles(ev.event) {
				return configErrorf("state %q declares event %q more than once", decl.name, ev.event)
			}
			h, err := toHandler(ev.value)
			if err != nil {
				return &ConfigurationError{
					Reason: fmt.Sprintf("state %q event %q", decl.name, ev.event),
					Err:    err,
				}
			}
			s.handlers[ev.event] = h
			s.events = append(s.events, ev.event)

			prev, seen := m.entries[ev.event]
			if !seen {
				m.eventOrder = append(m.eventOrder, ev.event)
			}
			m.entries[ev.event] = &entryPoint{event: ev.event, owner: s, prev: prev}
		}
		// named once its handlers are in place
		s.name = decl.name
		m.states[s.name] = s
		m.order = append(m.order, s.name)
	}

	if err := m.compileHooks(t.hooks); err != nil {
		return err
	}

	if initial == "" {
		initial = t.initial
	}
	start, ok := m.states[initial]
	if !ok {
		if initial != "" {
			m.logger.Warn("initial state not defined, using first declared state",
				"initial", initial, "state", m.order[0])
		}
		start = m.states[m.order[0]]
	}
	m.currentState = start
	return nil
}

func (m *Machine) compileHooks(decls []hookDecl) error {
	slots := newHookSlots()
	hasEvent := func(id EventID) bool { _, ok := m.entries[id]; return ok }
	hasState := func(id StateID) bool { _, ok := m.states[id]; return ok }

	for _, d := range decls {
		switch d.kind {
		case hookBefore, hookAfter:
			if !hasEvent(EventID(d.name)) {
				return configErrorf("hook for undefined event %q", d.name)
			}
			eh := slots.event(EventID(d.name))
			if d.kind == hookBefore {
				eh.before = d.fn
			} else {
				eh.after = d.fn
			}
		case hookEnter, hookLeave:
			if !hasState(StateID(d.name)) {
				return configErrorf("hook for undefined state %q", d.name)
			}
			if d.kind == hookEnter {
				slots.enter[StateID(d.name)] = d.fn
			} else {
				slots.leave[StateID(d.name)] = d.fn
			}
		case hookNamed:
			if !slots.bindNamed(d.name, d.fn, hasEvent, hasState) {
				return configErrorf("hook %q matches no event or state", d.name)
			}
		}
	}

	m.hooks = slots.finish(m.states)
	return nil
}
