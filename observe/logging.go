package observe

import (
	"context"
	"log/slog"

	"github.com/librescoot/eventfsm"
)

// Logging logs all state transitions.
type Logging struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogging creates a logging observer that writes at info level.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{logger: logger, level: slog.LevelInfo}
}

// AtLevel changes the level transitions are logged at.
func (o *Logging) AtLevel(level slog.Level) *Logging {
	o.level = level
	return o
}

// Notify implements eventfsm.Observer.
func (o *Logging) Notify(event eventfsm.EventID, from, to eventfsm.StateID) error {
	o.logger.Log(context.Background(), o.level, "state transition", "event", event, "from", from, "to", to)
	return nil
}
