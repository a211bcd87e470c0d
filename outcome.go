package eventfsm

import "fmt"

type outcomeKind uint8

const (
	outcomeStay outcomeKind = iota
	outcomeNamed
	outcomeState
)

// Outcome is what a handler asks the machine to do once it has run: stay, or
// move to a state given by name or by reference, optionally handing a value
// back to the caller in place of the machine.
//
// The zero Outcome is Stay().
type Outcome struct {
	kind     outcomeKind
	name     StateID
	state    *State
	value    any
	hasValue bool
}

// Stay keeps the current state; the caller receives the machine
func Stay() Outcome {
	return Outcome{kind: outcomeStay}
}

// StayWith keeps the current state; the caller receives value
func StayWith(value any) Outcome {
	return Outcome{kind: outcomeStay, value: value, hasValue: true}
}

// GoTo moves to the named state; the caller receives the machine
func GoTo(name StateID) Outcome {
	return Outcome{kind: outcomeNamed, name: name}
}

// GoToWith moves to the named state; the caller receives value
func GoToWith(name StateID, value any) Outcome {
	return Outcome{kind: outcomeNamed, name: name, value: value, hasValue: true}
}

// GoToState moves to s, which must belong to the same machine
func GoToState(s *State) Outcome {
	return Outcome{kind: outcomeState, state: s}
}

// GoToStateWith moves to s; the caller receives value
func GoToStateWith(s *State, value any) Outcome {
	return Outcome{kind: outcomeState, state: s, value: value, hasValue: true}
}

// Value returns the value handed back to the caller, if the outcome carries one
func (o Outcome) Value() (any, bool) {
	return o.value, o.hasValue
}

func (o Outcome) String() string {
	switch o.kind {
	case outcomeNamed:
		return fmt.Sprintf("goto(%s)", o.name)
	case outcomeState:
		if o.state == nil {
			return "goto(<nil state>)"
		}
		return fmt.Sprintf("goto(%s)", o.state.name)
	default:
		return "stay"
	}
}

// resolve turns an outcome into the next state and the caller's result,
// relative to the state that is current at commit time.
func (m *Machine) resolve(event EventID, current *State, o Outcome) (*State, any, error) {
	var result any = m
	if o.hasValue {
		result = o.value
	}

	switch o.kind {
	case outcomeStay:
		return current, result, nil

	case outcomeNamed:
		next, ok := m.states[o.name]
		if !ok {
			return nil, nil, &InvalidTransitionError{
				Event:  event,
				From:   current.name,
				Target: string(o.name),
				Reason: "no such state",
			}
		}
		return next, result, nil

	case outcomeState:
		if o.state == nil {
			return nil, nil, &InvalidTransitionError{
				Event:  event,
				From:   current.name,
				Target: "<nil>",
				Reason: "nil state",
			}
		}
		if m.states[o.state.name] != o.state {
			return nil, nil, &InvalidTransitionError{
				Event:  event,
				From:   current.name,
				Target: string(o.state.name),
				Reason: "state belongs to another machine",
			}
		}
		return o.state, result, nil
	}

	return nil, nil, &InvalidTransitionError{
		Event:  event,
		From:   current.name,
		Target: o.String(),
		Reason: "unrecognised outcome",
	}
}
