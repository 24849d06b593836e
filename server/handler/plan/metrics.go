package plan

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	Requests    prometheus.Counter
	Errors      prometheus.Counter
	Unreachable prometheus.Counter
	CacheHits   prometheus.Counter
	Latency     prometheus.Histogram

	BgRequests    prometheus.Counter
	BgErrors      prometheus.Counter
	BgLatency     prometheus.Histogram
	BgLastUpdated prometheus.Gauge
}

func (m *metrics) valid() bool {
	return m.Requests != nil && m.Errors != nil && m.Unreachable != nil &&
		m.CacheHits != nil && m.Latency != nil &&
		m.BgRequests != nil && m.BgErrors != nil && m.BgLatency != nil &&
		m.BgLastUpdated != nil
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		Requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "plan",
			Name:      "requests",
		}),
		Errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "plan",
			Name:      "errors",
		}),
		Unreachable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "plan",
			Name:      "unreachable",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "plan",
			Name:      "cache_hits",
		}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metroplanner",
			Subsystem: "plan",
			Name:      "latency",
			Buckets:   prometheus.DefBuckets,
		}),
		BgRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "reload",
			Name:      "requests",
		}),
		BgErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "reload",
			Name:      "errors",
		}),
		BgLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metroplanner",
			Subsystem: "reload",
			Name:      "latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		BgLastUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metroplanner",
			Subsystem: "reload",
			Name:      "last_updated",
		}),
	}

	reg.MustRegister(
		m.Requests, m.Errors, m.Unreachable, m.CacheHits, m.Latency,
		m.BgRequests, m.BgErrors, m.BgLatency, m.BgLastUpdated)

	return m
}
