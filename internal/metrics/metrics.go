// Package metrics exposes Prometheus collectors for the costing service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/mercury/internal/costing"
)

const namespace = "mercury"

// Recorder owns a private registry so tests and binaries never share
// collectors through the global default registry.
type Recorder struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	variations  *prometheus.CounterVec
	catalogSize prometheus.Gauge
}

// New registers the service collectors plus the Go runtime and process
// collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		variations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensitivity_variations_total",
			Help:      "Sensitivity variations evaluated by axis and outcome.",
		}, []string{"axis", "outcome"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_ingredients",
			Help:      "Number of records in the loaded ingredients catalog.",
		}),
	}

	r.registry.MustRegister(
		r.requests,
		r.duration,
		r.variations,
		r.catalogSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRequest records one served request. route should be the route
// pattern, not the raw path.
func (r *Recorder) ObserveRequest(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveReport counts the successful and failed variations of a sweep.
func (r *Recorder) ObserveReport(report costing.SensitivityReport) {
	for _, v := range report.CostSensitivity {
		r.variations.WithLabelValues("cost", outcome(v.Error)).Inc()
	}
	for _, v := range report.BatchSizeSensitivity {
		r.variations.WithLabelValues("batch_size", outcome(v.Error)).Inc()
	}
}

// SetCatalogSize publishes the size of the loaded catalog.
func (r *Recorder) SetCatalogSize(n int) {
	r.catalogSize.Set(float64(n))
}

func outcome(errText string) string {
	if errText != "" {
		return "error"
	}
	return "ok"
}
