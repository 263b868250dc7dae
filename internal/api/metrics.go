package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gounivar/domain/stats"
)

// metrics are registered per server so tests can build several servers
type metrics struct {
	analyses      *prometheus.CounterVec
	selectedTests *prometheus.CounterVec
	duration      prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gounivar_analyses_total",
			Help: "Analyze calls by outcome",
		}, []string{"outcome"}),
		selectedTests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gounivar_selected_tests_total",
			Help: "Significance tests selected, by test name",
		}, []string{"test"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gounivar_analysis_duration_seconds",
			Help:    "Time spent in analyze calls",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

func (m *metrics) observe(analysis *stats.Analysis) {
	for _, result := range analysis.Results {
		for _, test := range result.Tests {
			m.selectedTests.WithLabelValues(string(test.Name())).Inc()
		}
	}
}
