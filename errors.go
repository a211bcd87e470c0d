package eventfsm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState matches every configuration and transition error via errors.Is.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnknownEvent is returned when firing an event no state defines.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrPending is returned by Future.Result before the future settles.
	ErrPending = errors.New("future not settled")
)

// ConfigurationError reports a state table or initial state that cannot be
// compiled into a machine. It is only ever returned from construction.
type ConfigurationError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid state machine configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid state machine configuration: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is matches ErrInvalidState.
func (e *ConfigurationError) Is(target error) bool { return target == ErrInvalidState }

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports a handler outcome that does not resolve to a
// state of the machine's registry.
type InvalidTransitionError struct {
	Event  EventID
	From   StateID
	Target string
	Reason string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from state '%s' on event '%s' to '%s': %s", e.From, e.Event, e.Target, e.Reason)
}

// Is matches ErrInvalidState.
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidState }

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsInvalidTransitionError reports whether err is or wraps an *InvalidTransitionError.
func IsInvalidTransitionError(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}
