// Package metrics records repository and HTTP measurements in Prometheus form.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notes-go/internal/notes"
)

// Recorder implements notes.Metrics on its own registry, so several
// recorders (one per test, say) never collide.
type Recorder struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	errors       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with every metric registered. When
// withRuntime is set the Go runtime and process collectors are registered too.
func NewRecorder(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_operations_total",
			Help: "Repository operations, by operation.",
		}, []string{"op"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_operation_errors_total",
			Help: "Failed repository operations, by operation and error kind.",
		}, []string{"op", "kind"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_operation_duration_seconds",
			Help:    "Repository operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "notes_cache_hits_total",
			Help: "Record reads served from the read cache.",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "notes_cache_misses_total",
			Help: "Record reads that went to the storage backend.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (r *Recorder) ObserveOperation(op string, elapsed time.Duration, err error) {
	r.operations.WithLabelValues(op).Inc()
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		r.errors.WithLabelValues(op, notes.ErrorKind(err)).Inc()
	}
}

func (r *Recorder) CacheHit()  { r.cacheHits.Inc() }
func (r *Recorder) CacheMiss() { r.cacheMisses.Inc() }

// ObserveRequest records one served HTTP request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteTextfile dumps the current values to path for the node exporter's
// textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

var _ notes.Metrics = (*Recorder)(nil)
