// Package metrics exposes Prometheus instrumentation for alert playback.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/eventlog"
)

// Counters
var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerttone_events_total",
		Help: "Alert events by priority and kind",
	}, []string{"priority", "kind"})
	SynthesizedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alerttone_synthesized_bytes_total",
		Help: "Total PCM bytes produced by the synthesizer",
	})
)

// Gauges
var (
	ActivePriority = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "alerttone_active",
		Help: "1 for the currently active alert priority",
	}, []string{"priority"})
)

// Histograms
var (
	SynthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alerttone_synthesis_duration_ms",
		Help:    "Tone synthesis duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
)

// Observer feeds alert events into the collectors above.
type Observer struct{}

// Observe implements the alert observer interface.
func (Observer) Observe(e eventlog.Event) {
	EventsTotal.WithLabelValues(e.Priority, e.Kind.String()).Inc()
	switch e.Kind {
	case eventlog.KindSynthesized:
		SynthesizedBytesTotal.Add(float64(e.Bytes))
		SynthesisDuration.Observe(float64(e.Elapsed) / float64(time.Millisecond))
	case eventlog.KindPlayed:
		ActivePriority.WithLabelValues(e.Priority).Set(1)
	case eventlog.KindStopped:
		ActivePriority.WithLabelValues(e.Priority).Set(0)
	}
}

// Serve exposes /metrics on addr until the server fails. It is meant to
// run in its own goroutine.
func Serve(addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
