// Package metrics holds the Prometheus collectors of the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "launch_dashboard"

var (
	CallbackInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_invocations_total",
		Help:      "Callback dispatches by output.",
	}, []string{"output"})

	CallbackErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callback_errors_total",
		Help:      "Failed callback dispatches by output.",
	}, []string{"output"})

	ChartRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chart_renders_total",
		Help:      "Rendered chart images by chart and format.",
	}, []string{"chart", "format"})

	RecordsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_loaded",
		Help:      "Launch records in the served data set.",
	})
)
