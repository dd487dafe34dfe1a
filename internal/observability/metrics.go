package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard build.
type Metrics struct {
	// Loader metrics, labeled by source: Confirmed, Deaths, Recovered, country_codes.
	SourcesLoaded      *prometheus.CounterVec
	SourceLoadErrors   *prometheus.CounterVec
	RowsParsed         *prometheus.CounterVec
	SourceLoadDuration *prometheus.HistogramVec

	BuildDuration prometheus.Histogram

	// Snapshot gauges, set once per build.
	TotalConfirmed      prometheus.Gauge
	Countries           prometheus.Gauge
	UnmatchedCountries  prometheus.Gauge
	DuplicateLatestRows prometheus.Gauge
	LastUpdateTimestamp prometheus.Gauge

	SnapshotPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SourcesLoaded,
		m.SourceLoadErrors,
		m.RowsParsed,
		m.SourceLoadDuration,
		m.BuildDuration,
		m.TotalConfirmed,
		m.Countries,
		m.UnmatchedCountries,
		m.DuplicateLatestRows,
		m.LastUpdateTimestamp,
		m.SnapshotPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourcesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "sources_loaded_total",
			Help:      "Sources fetched and parsed successfully.",
		}, []string{"source"}),
		SourceLoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "source_load_errors_total",
			Help:      "Sources that could not be fetched or parsed.",
		}, []string{"source"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "rows_parsed_total",
			Help:      "Table rows parsed per source.",
		}, []string{"source"}),
		SourceLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "covid_dashboard",
			Name:      "source_load_duration_seconds",
			Help:      "Time to fetch and parse one source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "covid_dashboard",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete load-reshape-summarize build.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		TotalConfirmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "total_confirmed",
			Help:      "Total confirmed cases on the latest date.",
		}),
		Countries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "countries",
			Help:      "Rows in the latest snapshot.",
		}),
		UnmatchedCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "unmatched_countries",
			Help:      "Snapshot countries with no country-code entry.",
		}),
		DuplicateLatestRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "duplicate_latest_rows",
			Help:      "Repeated location rows on the latest date that were summed.",
		}),
		LastUpdateTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "covid_dashboard",
			Name:      "last_update_timestamp_seconds",
			Help:      "Unix time of the latest date in the confirmed series.",
		}),
		SnapshotPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "covid_dashboard",
			Name:      "snapshot_published_total",
			Help:      "Snapshot publish attempts by outcome.",
		}, []string{"outcome"}),
	}
}
