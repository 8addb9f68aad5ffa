package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "collision_enrich"

// Metrics holds the Prometheus counters, histograms, and gauges for an enrichment run.
type Metrics struct {
	EventsEnriched   prometheus.Counter
	WeatherJoin      *prometheus.CounterVec // labels: result={matched,unmatched}
	WithinThreshold  *prometheus.CounterVec // labels: within={true,false}
	CoordStatus      *prometheus.CounterVec // labels: status={ok,missing,out_of_range}
	LandmarksLoaded  prometheus.Gauge
	PipelineRunning  prometheus.Gauge
	RunDuration      *prometheus.HistogramVec // labels: stage={load,enrich,validate,write}
	RowsWritten      *prometheus.CounterVec   // labels: sink
	SinkErrors       *prometheus.CounterVec   // labels: sink

	// Spatial chunk metrics.
	ChunksProcessed prometheus.Counter
	ChunkSize       prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EventsEnriched,
		m.WeatherJoin,
		m.WithinThreshold,
		m.CoordStatus,
		m.LandmarksLoaded,
		m.PipelineRunning,
		m.RunDuration,
		m.RowsWritten,
		m.SinkErrors,
		m.ChunksProcessed,
		m.ChunkSize,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
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
		EventsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_enriched_total",
			Help:      "Total events written to the enriched table.",
		}),
		WeatherJoin: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_join_total",
			Help:      "Events by weather join result.",
		}, []string{"result"}),
		WithinThreshold: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "within_threshold_total",
			Help:      "Events by within_threshold flag.",
		}, []string{"within"}),
		CoordStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coord_status_total",
			Help:      "Events by coordinate status.",
		}, []string{"status"}),
		LandmarksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "landmarks_loaded",
			Help:      "Number of landmarks in the current run.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each run stage.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written per output sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed writes per output sink.",
		}, []string{"sink"}),
		ChunksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spatial_chunks_total",
			Help:      "Spatial join chunks completed.",
		}),
		ChunkSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spatial_chunk_size",
			Help:      "Events per spatial join chunk.",
			Buckets:   []float64{100, 1000, 5000, 10000, 25000, 50000, 100000},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when landmark geocoding is enabled, 0 otherwise.",
		}),
	}
}
