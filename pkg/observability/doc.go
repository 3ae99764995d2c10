/*
Package observability turns validator lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics := observability.NewMetrics()
	metrics.MustRegister(prometheus.DefaultRegisterer)

	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
	v, err := propschema.New(s, propschema.WithHooks(hooks))
*/
package observability
