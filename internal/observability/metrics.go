package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marine_maps"

// Metrics holds the Prometheus counters and histograms for the map pipeline.
type Metrics struct {
	// Acquisition metrics.
	FetchRequests *prometheus.CounterVec // labels: status={200,404,...,error}
	FetchBytes    prometheus.Counter
	FetchDuration prometheus.Histogram

	// Reduction and aggregation metrics.
	FilesLoaded     prometheus.Counter
	RowsLoaded      prometheus.Counter
	CellsAggregated *prometheus.CounterVec // labels: field={AIR_TEMP,...,WIND}

	// Rendering metrics.
	MapsRendered   *prometheus.CounterVec   // labels: kind={scalar,diff,wind}
	RenderDuration *prometheus.HistogramVec // labels: kind

	NotificationsPublished *prometheus.CounterVec // labels: outcome={success,error}

	registry *prometheus.Registry
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// WriteTextfile dumps the current metric values in the Prometheus text
// format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FetchRequests,
		m.FetchBytes,
		m.FetchDuration,
		m.FilesLoaded,
		m.RowsLoaded,
		m.CellsAggregated,
		m.MapsRendered,
		m.RenderDuration,
		m.NotificationsPublished,
	}
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Data service requests by HTTP status, or \"error\" when no response was received.",
		}, []string{"status"}),
		FetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_bytes_total",
			Help:      "Bytes of response bodies written to disk.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one daily download, request through file write.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_loaded_total",
			Help:      "CSV files reduced into observations.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Observation rows read from CSV files.",
		}),
		CellsAggregated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_aggregated_total",
			Help:      "Occupied grid cells produced by aggregation, by field.",
		}, []string{"field"}),
		MapsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_rendered_total",
			Help:      "Map images written, by kind.",
		}, []string{"kind"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to draw and encode one map image.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		NotificationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Artifact notifications sent to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
