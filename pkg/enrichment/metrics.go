package enrichment

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics exports coverage as Prometheus gauges in text format, for
// pickup by a node exporter textfile collector.
func WriteMetrics(path string, s Stats) error {
	reg := prometheus.NewRegistry()

	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "curator",
		Subsystem: "enrichment",
		Name:      "records",
		Help:      "Number of enrichment records.",
	})
	populated := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "curator",
		Subsystem: "enrichment",
		Name:      "populated_records",
		Help:      "Records with the field populated.",
	}, []string{"field"})
	coverage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "curator",
		Subsystem: "enrichment",
		Name:      "coverage_ratio",
		Help:      "Fraction of records with the field populated.",
	}, []string{"field"})
	confidence := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "curator",
		Subsystem: "enrichment",
		Name:      "confidence_records",
		Help:      "Records per confidence level.",
	}, []string{"level"})

	reg.MustRegister(total, populated, coverage, confidence)

	total.Set(float64(s.Total))
	for _, f := range s.Fields() {
		populated.WithLabelValues(f.Field).Set(float64(f.Count))
		coverage.WithLabelValues(f.Field).Set(f.Ratio)
	}
	for level, n := range s.Confidence {
		confidence.WithLabelValues(string(level)).Set(float64(n))
	}

	return prometheus.WriteToTextfile(path, reg)
}
