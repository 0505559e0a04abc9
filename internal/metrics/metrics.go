// Package metrics exposes Prometheus instrumentation for Flickr API calls,
// image downloads and search outcomes.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// APICalls counts outbound calls by API and result status
	APICalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flickfinder_api_calls_total",
		Help: "Outbound API calls by api and status.",
	}, []string{"api", "status"})

	// APIResponseTime measures outbound call latency
	APIResponseTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flickfinder_api_response_time_seconds",
		Help:    "Outbound API response time in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"api"})

	// SearchOutcomes counts finished searches by outcome
	SearchOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flickfinder_search_outcomes_total",
		Help: "Finished searches by mode and outcome.",
	}, []string{"mode", "outcome"})

	// BreakerState mirrors the circuit breaker state (0 closed, 1 half-open, 2 open)
	BreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flickfinder_breaker_state",
		Help: "Flickr API circuit breaker state.",
	})
)

// API labels
const (
	APISearch = "flickr_search"
	APIImage  = "flickr_image"
)

// Register adds every collector to reg
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{APICalls, APIResponseTime, SearchOutcomes, BreakerState} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveCall records one outbound call
func ObserveCall(api, status string, started time.Time) {
	APICalls.WithLabelValues(api, status).Inc()
	APIResponseTime.WithLabelValues(api).Observe(time.Since(started).Seconds())
}

// Serve exposes reg on addr under /metrics until ctx is done
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
