package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "lessbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	phaseDuration *prom.HistogramVec
	entryResults  *prom.CounterVec
	compiles      *prom.CounterVec
}

// NewPrometheusRecorder constructs the phase metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		phaseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"}),
		entryResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "entry_results_total",
			Help:      "Per-entry results by phase and outcome",
		}, []string{"phase", "result"}),
		compiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "compilations_total",
			Help:      "Stylesheet compilations performed by phase",
		}, []string{"phase"}),
	}
	reg.MustRegister(pr.phaseDuration, pr.entryResults, pr.compiles)
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil || p.phaseDuration == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEntryResult(phase string, result ResultLabel) {
	if p == nil || p.entryResults == nil {
		return
	}
	p.entryResults.WithLabelValues(phase, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCompile(phase string) {
	if p == nil || p.compiles == nil {
		return
	}
	p.compiles.WithLabelValues(phase).Inc()
}
