// Package observe provides ready-made eventfsm observers: structured
// logging, Prometheus counters and OpenTelemetry spans for every committed
// transition.
//
//	m := eventfsm.MustNew(table)
//	m.Bind(observe.NewLogging(slog.Default())).
//		Bind(observe.NewMetrics(prometheus.DefaultRegisterer, "turnstile")).
//		Bind(observe.NewTracing(nil, "turnstile"))
package observe
