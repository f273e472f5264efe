package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder records dataset loads and dashboard recomputations.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	datasetRecords  prometheus.Gauge
	datasetLoads    *prometheus.CounterVec
	recomputeTime   prometheus.Histogram
	recomputeTotals *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with its own registry, including Go
// runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rental_dataset_records",
			Help: "Number of records in the current rental dataset.",
		}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_dataset_loads_total",
			Help: "Total dataset load attempts by result.",
		}, []string{"result"}),
		recomputeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rental_recompute_duration_seconds",
			Help:    "Time spent deriving a dashboard view.",
			Buckets: prometheus.DefBuckets,
		}),
		recomputeTotals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_recompute_total",
			Help: "Total dashboard view requests by whether a memoised view was used.",
		}, []string{"cached"}),
	}

	registry.MustRegister(r.datasetRecords, r.datasetLoads, r.recomputeTime, r.recomputeTotals)
	return r
}

func (r *PrometheusRecorder) DatasetLoaded(records int, err error) {
	if err != nil {
		r.datasetLoads.WithLabelValues("error").Inc()
		return
	}
	r.datasetLoads.WithLabelValues("ok").Inc()
	r.datasetRecords.Set(float64(records))
}

func (r *PrometheusRecorder) Recomputed(d time.Duration, cached bool) {
	if cached {
		r.recomputeTotals.WithLabelValues("true").Inc()
		return
	}
	r.recomputeTotals.WithLabelValues("false").Inc()
	r.recomputeTime.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}
