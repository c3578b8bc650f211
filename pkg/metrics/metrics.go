package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cheshirelabs/chester/pkg/state"
)

// Registry holds chester's metrics on a dedicated prometheus.Registry
// rather than the global DefaultRegisterer, so a process embedding chester
// as a library can run more than one instance without collector name
// clashes.
type Registry struct {
	prom *prometheus.Registry

	SweepsTotal     prometheus.Counter
	StageStatus     *prometheus.GaugeVec
	CoveragePercent prometheus.Gauge
	TestsSetSize    prometheus.Gauge
}

// NewRegistry builds and registers every chester metric.
func NewRegistry() *Registry {
	r := &Registry{
		prom: prometheus.NewRegistry(),

		SweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chester_sweeps_total",
			Help: "Total number of pipeline sweeps started by a ChangeDetected event",
		}),

		StageStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chester_stage_status",
				Help: "1 for a stage's current status, 0 for the others; labels are stage and status",
			},
			[]string{"stage", "status"},
		),

		CoveragePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chester_coverage_percent",
			Help: "Last successfully parsed coverage percentage",
		}),

		TestsSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chester_tests_set_size",
			Help: "Size of the current declared-tests set",
		}),
	}

	r.prom.MustRegister(r.SweepsTotal, r.StageStatus, r.CoveragePercent, r.TestsSetSize)
	return r
}

// stageStatusLabels are the status values StageStatus tracks for each
// stage, mirroring state.Outcome's three values.
var stageStatusLabels = []string{
	state.Pending.String(),
	state.Success.String(),
	state.Failure.String(),
}

// setStage sets the stage/status gauge to 1 for current and 0 for every
// other status value.
func (r *Registry) setStage(stage string, current state.Outcome) {
	for _, status := range stageStatusLabels {
		v := 0.0
		if status == current.String() {
			v = 1.0
		}
		r.StageStatus.WithLabelValues(stage, status).Set(v)
	}
}
