// Package server exposes operational metrics for watch mode.
//
// The metrics server runs on its own port so scraping never mixes with
// anything user-facing. It serves /metrics for Prometheus and /healthz
// as a liveness probe.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultMetricsReadTimeout is the read-header timeout for the metrics server.
	DefaultMetricsReadTimeout = 10 * time.Second

	// DefaultMetricsWriteTimeout is the write timeout for the metrics server.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultMetricsIdleTimeout is the idle timeout for the metrics server.
	DefaultMetricsIdleTimeout = 60 * time.Second
)

// Counters exported for the orchestrator.
var (
	// InsertsTotal counts insert cycles by outcome ("success"/"error").
	InsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gcalnote_inserts_total",
		Help: "Number of note insert cycles, by outcome.",
	}, []string{"status"})

	// RefreshCyclesTotal counts auto-refresh timer firings.
	RefreshCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gcalnote_refresh_cycles_total",
		Help: "Number of auto-refresh timer firings.",
	})

	// FetchErrorsTotal counts failed calendar fetch cycles.
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gcalnote_calendar_fetch_errors_total",
		Help: "Number of calendar fetch cycles that failed entirely.",
	})
)

// MetricsServer serves Prometheus metrics on a dedicated address.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
}

// NewMetricsServer creates a metrics server bound to addr (e.g. ":9090").
func NewMetricsServer(addr string) *MetricsServer {
	return &MetricsServer{addr: addr}
}

// Start starts the metrics server and blocks until shutdown. Call in a
// goroutine for non-blocking operation.
func (s *MetricsServer) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
