package ingest

import "github.com/prometheus/client_golang/prometheus"

var (
	CounterRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gutendex",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Number of catalog import runs by final status.",
		},
		[]string{"status"},
	)
	CounterBooks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gutendex",
			Subsystem: "ingest",
			Name:      "books_total",
			Help:      "Number of books processed by the importer by result.",
		},
		[]string{"result"},
	)
	GaugeLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gutendex",
			Subsystem: "ingest",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed import run.",
		},
	)
)

func init() {
	prometheus.MustRegister(CounterRuns, CounterBooks, GaugeLastSuccess)
}
