package observe_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/librescoot/eventfsm"
	"github.com/librescoot/eventfsm/observe"
)

func turnstile(t *testing.T, observers ...eventfsm.Observer) *eventfsm.Machine {
	t.Helper()
	m, err := eventfsm.New(eventfsm.NewTable().
		State("locked", eventfsm.Events{"coin": "unlocked"}).
		State("unlocked", eventfsm.Events{"push": "locked", "wait": "unlocked"}))
	require.NoError(t, err)
	for _, o := range observers {
		m.Bind(o)
	}
	return m
}

func fire(t *testing.T, m *eventfsm.Machine, event eventfsm.EventID) {
	t.Helper()
	_, err := m.Fire(event).Await(context.Background())
	require.NoError(t, err)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := turnstile(t, observe.NewLogging(logger).AtLevel(slog.LevelDebug))
	fire(t, m, "coin")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="state transition"`)
	assert.Contains(t, out, "event=coin")
	assert.Contains(t, out, "from=locked")
	assert.Contains(t, out, "to=unlocked")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observe.NewMetrics(reg, "turnstile")

	m := turnstile(t, metrics)
	fire(t, m, "coin")
	fire(t, m, "wait")
	fire(t, m, "push")
	fire(t, m, "coin")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Transitions().WithLabelValues("coin", "locked", "unlocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions().WithLabelValues("wait", "unlocked", "unlocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions().WithLabelValues("push", "unlocked", "locked")))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.States().WithLabelValues("unlocked")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.States().WithLabelValues("locked")))

	count, err := testutil.GatherAndCount(reg, "eventfsm_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetricsWithoutRegisterer(t *testing.T) {
	metrics := observe.NewMetrics(nil, "scratch")
	m := turnstile(t, metrics)
	fire(t, m, "coin")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Transitions().WithLabelValues("coin", "locked", "unlocked")))
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := turnstile(t, observe.NewTracing(provider, "turnstile"))
	fire(t, m, "coin")
	fire(t, m, "wait")

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "fsm.transition coin", spans[0].Name())
	assert.Subset(t, spans[0].Attributes(), []attribute.KeyValue{
		attribute.String("fsm.machine", "turnstile"),
		attribute.String("fsm.event", "coin"),
		attribute.String("fsm.from", "locked"),
		attribute.String("fsm.to", "unlocked"),
		attribute.Bool("fsm.changed", true),
	})
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("fsm.changed", false))
}

func TestUnboundObserversStopRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observe.NewMetrics(reg, "turnstile")

	m := turnstile(t, metrics)
	fire(t, m, "coin")
	m.Unbind(metrics)
	fire(t, m, "push")

	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Transitions().WithLabelValues("push", "unlocked", "locked")))
}
