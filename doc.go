// Package eventfsm builds finite state machines from a declarative table of
// states and the events each state accepts.
//
// Every event name in the table gets one entry point on the Machine. Firing
// an event the current state does not define is a no-op that resolves to the
// machine itself; otherwise the state's handler runs and its Outcome decides
// the next state and the value handed back to the caller:
//
//	m := eventfsm.MustNew(eventfsm.NewTable().
//		State("locked", eventfsm.Events{"coin": "unlocked"}).
//		State("unlocked", eventfsm.Events{"push": "locked"}))
//
//	m.Fire("coin")
//	m.State() // "unlocked"
//
// Handlers may answer later by returning a pending Future; the transition
// commits when it settles. Lifecycle hooks (onbefore<Event>, onafter<Event>,
// onenter<State>, onleave<State> and the on<Name> shorthands) run around each
// transition, then bound observers are notified.
package eventfsm
