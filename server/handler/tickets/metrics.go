package tickets

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	Booked    prometheus.Counter
	Cancelled prometheus.Counter
	Rejected  *prometheus.CounterVec
	Revenue   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		Booked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "tickets",
			Name:      "booked",
		}),
		Cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "tickets",
			Name:      "cancelled",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "tickets",
			Name:      "rejected",
		}, []string{"code"}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metroplanner",
			Subsystem: "tickets",
			Name:      "fare_total",
		}),
	}

	reg.MustRegister(m.Booked, m.Cancelled, m.Rejected, m.Revenue)

	return m
}
