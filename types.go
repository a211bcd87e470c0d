package eventfsm

import "log/slog"

// StateID is a unique identifier for a state
type StateID string

// EventID is a unique identifier for an event name
type EventID string

// Logger is the default logger used when none is provided
var Logger = slog.Default()
