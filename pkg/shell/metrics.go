package shell

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a prometheus.Collector of per-session shell counters. It is
// owned by the Shell; the embedding program registers it on whatever
// registry it exposes.
type Metrics struct {
	lines       atomic.Uint64
	dispatched  atomic.Uint64
	failures    atomic.Uint64
	completions atomic.Uint64
	helpShown   atomic.Uint64

	linesDesc       *prometheus.Desc
	dispatchedDesc  *prometheus.Desc
	failuresDesc    *prometheus.Desc
	completionsDesc *prometheus.Desc
	helpDesc        *prometheus.Desc
}

// NewMetrics creates an unregistered collector.
func NewMetrics() *Metrics {
	return &Metrics{
		linesDesc: prometheus.NewDesc(
			"gramline_shell_lines_total",
			"Lines read from the user.",
			nil, nil,
		),
		dispatchedDesc: prometheus.NewDesc(
			"gramline_shell_commands_dispatched_total",
			"Commands that reached an action callback.",
			nil, nil,
		),
		failuresDesc: prometheus.NewDesc(
			"gramline_shell_parse_failures_total",
			"Lines rejected as invalid or incomplete.",
			nil, nil,
		),
		completionsDesc: prometheus.NewDesc(
			"gramline_shell_completion_requests_total",
			"Tab completion requests served.",
			nil, nil,
		),
		helpDesc: prometheus.NewDesc(
			"gramline_shell_help_requests_total",
			"Contextual help requests served.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.linesDesc
	ch <- m.dispatchedDesc
	ch <- m.failuresDesc
	ch <- m.completionsDesc
	ch <- m.helpDesc
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	counter := func(d *prometheus.Desc, v uint64) prometheus.Metric {
		return prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	ch <- counter(m.linesDesc, m.lines.Load())
	ch <- counter(m.dispatchedDesc, m.dispatched.Load())
	ch <- counter(m.failuresDesc, m.failures.Load())
	ch <- counter(m.completionsDesc, m.completions.Load())
	ch <- counter(m.helpDesc, m.helpShown.Load())
}
