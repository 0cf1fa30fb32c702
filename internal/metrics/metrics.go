// Package metrics exposes Prometheus instrumentation for remote calls.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/five82/roster/internal/roster"
	"github.com/five82/roster/internal/syncer"
)

const namespace = "roster"

// Metrics records request outcomes and latencies per operation. It
// satisfies syncer.Observer.
type Metrics struct {
	registry   *prometheus.Registry
	handler    http.Handler
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	superseded *prometheus.CounterVec
	inflight   *prometheus.GaugeVec
}

var _ syncer.Observer = (*Metrics)(nil)

// New registers the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Remote requests by operation and outcome",
	}, []string{"op", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Latency of settled remote requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	superseded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_completions_total",
		Help:      "Completions discarded because a newer request was issued",
	}, []string{"op"})

	inflight := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "requests_in_flight",
		Help:      "Remote requests currently outstanding",
	}, []string{"op"})

	registry.MustRegister(requests, duration, superseded, inflight)

	return &Metrics{
		registry:   registry,
		handler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requests:   requests,
		duration:   duration,
		superseded: superseded,
		inflight:   inflight,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Started(op syncer.Op) {
	m.inflight.WithLabelValues(string(op)).Inc()
}

func (m *Metrics) Succeeded(op syncer.Op, elapsed time.Duration) {
	m.settle(op, "success", elapsed)
}

func (m *Metrics) Failed(op syncer.Op, elapsed time.Duration, err error) {
	outcome := "error"
	if kind := roster.KindOf(err); kind != 0 {
		outcome = kind.String()
	}
	m.settle(op, outcome, elapsed)
}

func (m *Metrics) Superseded(op syncer.Op) {
	m.inflight.WithLabelValues(string(op)).Dec()
	m.superseded.WithLabelValues(string(op)).Inc()
}

func (m *Metrics) settle(op syncer.Op, outcome string, elapsed time.Duration) {
	m.inflight.WithLabelValues(string(op)).Dec()
	m.requests.WithLabelValues(string(op), outcome).Inc()
	m.duration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
