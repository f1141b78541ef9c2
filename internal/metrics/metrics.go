package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mockinterview"

// Metrics owns every collector of the service. Each instance registers on its
// own Registerer, so tests can build as many as they like.
type Metrics struct {
	service string

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec

	sessions *prometheus.CounterVec
}

func New(reg prometheus.Registerer, service string) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": service}

	return &Metrics{
		service: service,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests received",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "http_in_flight_requests",
			Help:        "Current number of in-flight HTTP requests",
			ConstLabels: constLabels,
		}),
		providerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "provider_calls_total",
			Help:        "Completion provider attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"provider", "operation", "outcome"}),
		providerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "provider_call_duration_seconds",
			Help:        "Duration of completion provider attempts in seconds",
			Buckets:     []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30, 45},
			ConstLabels: constLabels,
		}, []string{"provider", "operation"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "provider_fallbacks_total",
			Help:        "Calls answered by the fallback tier after a remote failure",
			ConstLabels: constLabels,
		}, []string{"operation", "reason"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "interview_sessions_total",
			Help:        "Interview sessions reaching a lifecycle stage",
			ConstLabels: constLabels,
		}, []string{"stage"}),
	}
}

// ObserveCall records one provider attempt.
func (m *Metrics) ObserveCall(provider, operation, outcome string, elapsed time.Duration) {
	m.providerCalls.WithLabelValues(provider, operation, outcome).Inc()
	m.providerLatency.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFallback(operation, reason string) {
	m.fallbacks.WithLabelValues(operation, reason).Inc()
}

// SessionStage counts sessions that were started, completed, abandoned or exported.
func (m *Metrics) SessionStage(stage string, n int) {
	m.sessions.WithLabelValues(stage).Add(float64(n))
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics labelled by chi route pattern, so session
// ids never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		m.httpRequests.With(labels).Inc()
		m.httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the collectors of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
