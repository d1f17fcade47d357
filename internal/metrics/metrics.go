// Package metrics exposes Prometheus metrics for weekly analysis, sweeps and
// scheduled tasks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/6are8/Plan-Smart/internal/weekly"
)

// Metrics holds the collectors. All names are prefixed with "plansmart_".
//
//   - plansmart_analyses_total{outcome} - single-user analyses by outcome
//   - plansmart_analysis_duration_seconds{outcome} - analysis latency
//   - plansmart_sweep_users{result} - per-result user counts of the last sweep
//   - plansmart_sweep_duration_seconds - sweep latency
//   - plansmart_task_runs_total{task,status} - scheduled task runs
//   - plansmart_task_duration_seconds{task} - scheduled task latency
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	SweepUsers    *prometheus.GaugeVec
	SweepDuration prometheus.Histogram

	TaskRunsTotal *prometheus.CounterVec
	TaskDuration  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansmart_analyses_total",
				Help: "Total number of weekly analyses by outcome",
			},
			[]string{"outcome"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plansmart_analysis_duration_seconds",
				Help:    "Duration of a single weekly analysis in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
			},
			[]string{"outcome"},
		),
		SweepUsers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plansmart_sweep_users",
				Help: "Users per result in the most recent sweep",
			},
			[]string{"result"},
		),
		SweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plansmart_sweep_duration_seconds",
				Help:    "Duration of a full weekly sweep in seconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		TaskRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansmart_task_runs_total",
				Help: "Total number of scheduled task runs by status",
			},
			[]string{"task", "status"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plansmart_task_duration_seconds",
				Help:    "Duration of scheduled task runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			},
			[]string{"task"},
		),
		gatherer: reg,
	}
}

// ObserveAnalysis implements weekly.Recorder.
func (m *Metrics) ObserveAnalysis(outcome string, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveSweep implements weekly.Recorder.
func (m *Metrics) ObserveSweep(stats weekly.SweepStats, d time.Duration) {
	m.SweepUsers.WithLabelValues("total").Set(float64(stats.TotalUsers))
	m.SweepUsers.WithLabelValues("analyzed").Set(float64(stats.Analyzed))
	m.SweepUsers.WithLabelValues("skipped").Set(float64(stats.Skipped))
	m.SweepUsers.WithLabelValues("errors").Set(float64(stats.Errors))
	m.SweepDuration.Observe(d.Seconds())
}

// ObserveTask records one scheduled task run.
func (m *Metrics) ObserveTask(task string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.TaskRunsTotal.WithLabelValues(task, status).Inc()
	m.TaskDuration.WithLabelValues(task).Observe(d.Seconds())
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ weekly.Recorder = (*Metrics)(nil)
