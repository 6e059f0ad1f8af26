package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aquagrid"

// Metrics holds the Prometheus collectors for simulations, HTTP traffic and loaded data.
type Metrics struct {
	Simulations      *prometheus.CounterVec // labels: model_mode
	SimulationErrors *prometheus.CounterVec // labels: kind={invalid_input,out_of_coverage,data_unavailable}
	StrainPercent    prometheus.Histogram

	HTTPRequests *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration *prometheus.HistogramVec // labels: method, route

	RegionsLoaded   *prometheus.GaugeVec // labels: layer={county,utility}
	BaselinesLoaded prometheus.Gauge
	LedgerRows      *prometheus.GaugeVec // labels: outcome
}

func newMetrics() *Metrics {
	return &Metrics{
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Completed simulations by denominator branch.",
		}, []string{"model_mode"}),
		SimulationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_errors_total",
			Help:      "Rejected or failed simulations by error kind.",
		}, []string{"kind"}),
		StrainPercent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strain_percent",
			Help:      "Estimated strain as a percentage of baseline withdrawal.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 25, 50, 100},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
		RegionsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions_loaded",
			Help:      "Polygons loaded per boundary layer.",
		}, []string{"layer"}),
		BaselinesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "utility_baselines_loaded",
			Help:      "Utilities with a derived water-use baseline.",
		}),
		LedgerRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_rows",
			Help:      "Usage ledger rows by outcome (accepted or discard reason).",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all collectors with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Simulations,
		m.SimulationErrors,
		m.StrainPercent,
		m.HTTPRequests,
		m.HTTPDuration,
		m.RegionsLoaded,
		m.BaselinesLoaded,
		m.LedgerRows,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// RecordDataset publishes the size of the loaded dataset.
func (m *Metrics) RecordDataset(counties, utilities, baselines, accepted int, discarded map[string]int) {
	m.RegionsLoaded.WithLabelValues("county").Set(float64(counties))
	m.RegionsLoaded.WithLabelValues("utility").Set(float64(utilities))
	m.BaselinesLoaded.Set(float64(baselines))
	m.LedgerRows.WithLabelValues("accepted").Set(float64(accepted))
	for reason, n := range discarded {
		m.LedgerRows.WithLabelValues(reason).Set(float64(n))
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
