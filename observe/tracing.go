package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/librescoot/eventfsm"
)

const tracerName = "github.com/librescoot/eventfsm/observe"

// Tracing records a span for every committed transition.
type Tracing struct {
	tracer  trace.Tracer
	machine string
}

// NewTracing creates a tracing observer. A nil provider uses the global one.
func NewTracing(provider trace.TracerProvider, machine string) *Tracing {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracing{tracer: provider.Tracer(tracerName), machine: machine}
}

// Notify implements eventfsm.Observer.
func (o *Tracing) Notify(event eventfsm.EventID, from, to eventfsm.StateID) error {
	_, span := o.tracer.Start(context.Background(), "fsm.transition "+string(event),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("fsm.machine", o.machine),
			attribute.String("fsm.event", string(event)),
			attribute.String("fsm.from", string(from)),
			attribute.String("fsm.to", string(to)),
			attribute.Bool("fsm.changed", from != to),
		),
	)
	span.End()
	return nil
}
