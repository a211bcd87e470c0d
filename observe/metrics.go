package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/librescoot/eventfsm"
)

// Metrics tracks committed transitions and the current state of one machine.
type Metrics struct {
	transitions *prometheus.CounterVec
	state       *prometheus.GaugeVec
}

// NewMetrics registers the transition metrics with registerer, labelled with
// the machine name. A nil registerer creates unregistered collectors.
func NewMetrics(registerer prometheus.Registerer, machine string) *Metrics {
	labels := prometheus.Labels{"machine": machine}
	return &Metrics{
		transitions: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "eventfsm",
				Name:        "transitions_total",
				Help:        "Total number of committed transitions",
				ConstLabels: labels,
			},
			[]string{"event", "from", "to"},
		),
		state: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   "eventfsm",
				Name:        "state",
				Help:        "1 for the current state of the machine, 0 otherwise",
				ConstLabels: labels,
			},
			[]string{"state"},
		),
	}
}

// Notify implements eventfsm.Observer.
func (o *Metrics) Notify(event eventfsm.EventID, from, to eventfsm.StateID) error {
	o.transitions.WithLabelValues(string(event), string(from), string(to)).Inc()
	if from != to {
		o.state.WithLabelValues(string(from)).Set(0)
	}
	o.state.WithLabelValues(string(to)).Set(1)
	return nil
}

// Transitions exposes the transition counter, e.g. for tests.
func (o *Metrics) Transitions() *prometheus.CounterVec {
	return o.transitions
}

// States exposes the current-state gauge.
func (o *Metrics) States() *prometheus.GaugeVec {
	return o.state
}
