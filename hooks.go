package eventfsm

import "strings"

// Hook is a lifecycle callback. A non-nil error aborts the rest of the
// transition and fails the caller's future.
type Hook func(event EventID, from, to StateID) error

type hookKind uint8

const (
	hookBefore hookKind = iota
	hookAfter
	hookEnter
	hookLeave
	hookNamed // resolved by naming convention at compile time
)

type hookDecl struct {
	kind hookKind
	name string // event, state or full hook name depending on kind
	fn   Hook
}

// eventHooks are the hook slots of one event name
type eventHooks struct {
	before Hook
	after  Hook
}

// hookSlots collects compiled hooks; the on<Name> fallbacks only apply when
// the specific slot stays empty.
type hookSlots struct {
	events        map[EventID]*eventHooks
	afterFallback map[EventID]Hook
	enter         map[StateID]Hook
	enterFallback map[StateID]Hook
	leave         map[StateID]Hook
}

func newHookSlots() *hookSlots {
	return &hookSlots{
		events:        make(map[EventID]*eventHooks),
		afterFallback: make(map[EventID]Hook),
		enter:         make(map[StateID]Hook),
		enterFallback: make(map[StateID]Hook),
		leave:         make(map[StateID]Hook),
	}
}

func (h *hookSlots) event(id EventID) *eventHooks {
	eh, ok := h.events[id]
	if !ok {
		eh = &eventHooks{}
		h.events[id] = eh
	}
	return eh
}

// bindNamed matches a conventional hook name against the compiled events
// and states. A name may fill more than one slot.
func (h *hookSlots) bindNamed(name string, fn Hook, hasEvent func(EventID) bool, hasState func(StateID) bool) bool {
	matched := false

	if rest, ok := strings.CutPrefix(name, "onbefore"); ok && hasEvent(EventID(rest)) {
		h.event(EventID(rest)).before = fn
		matched = true
	}
	if rest, ok := strings.CutPrefix(name, "onafter"); ok && hasEvent(EventID(rest)) {
		h.event(EventID(rest)).after = fn
		matched = true
	}
	if rest, ok := strings.CutPrefix(name, "onenter"); ok && hasState(StateID(rest)) {
		h.enter[StateID(rest)] = fn
		matched = true
	}
	if rest, ok := strings.CutPrefix(name, "onleave"); ok && hasState(StateID(rest)) {
		h.leave[StateID(rest)] = fn
		matched = true
	}
	if rest, ok := strings.CutPrefix(name, "on"); ok {
		if hasEvent(EventID(rest)) {
			h.afterFallback[EventID(rest)] = fn
			matched = true
		}
		if hasState(StateID(rest)) {
			h.enterFallback[StateID(rest)] = fn
			matched = true
		}
	}

	return matched
}

// finish applies the fallbacks and attaches state hooks to their states
func (h *hookSlots) finish(states map[StateID]*State) map[EventID]eventHooks {
	for id, fn := range h.afterFallback {
		if eh := h.event(id); eh.after == nil {
			eh.after = fn
		}
	}
	for id, s := range states {
		s.onEnter = h.enter[id]
		if s.onEnter == nil {
			s.onEnter = h.enterFallback[id]
		}
		s.onLeave = h.leave[id]
	}

	out := make(map[EventID]eventHooks, len(h.events))
	for id, eh := range h.events {
		out[id] = *eh
	}
	return out
}

func runHook(fn Hook, event EventID, from, to StateID) error {
	if fn == nil {
		return nil
	}
	return fn(event, from, to)
}
