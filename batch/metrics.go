package batch

import "github.com/prometheus/client_golang/prometheus"

const (
	opRegister = "register"
	opLookup   = "lookup"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type metrics struct {
	groups *prometheus.CounterVec
	ids    *prometheus.CounterVec
	topups prometheus.Counter
	passes prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "app_registry_batch_groups_total",
			Help: "Number of processed call groups by operation and outcome.",
		}, []string{"op", "outcome"}),
		ids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "app_registry_batch_ids_total",
			Help: "Number of identifiers in processed register groups by outcome.",
		}, []string{"outcome"}),
		topups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "app_registry_batch_budget_topups_total",
			Help: "Number of groups prepended with a compute budget call.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "app_registry_batch_passes_total",
			Help: "Number of register passes.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.groups, m.ids, m.topups, m.passes)
	}

	return m
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
