// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
	scoring "github.com/SanatanSinghVishen/Tracel/internal/domain/scoring"
	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Score runs the model over one telemetry payload.
	Score(ctx context.Context, t model.Telemetry) (scoring.Result, error)

	// ThreatIntel builds the windowed threat-intelligence report.
	ThreatIntel(ctx context.Context, p report.Params) (*report.ThreatIntel, error)

	// ModelStatus reports the loader's current view without triggering
	// a load.
	ModelStatus() ml.Status

	// ReloadModel drops any cached artifact and loads fresh from disk.
	ReloadModel(ctx context.Context) (*ml.Artifact, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithReportTimeout bounds how long one report request may spend in the
// aggregation engine.
func WithReportTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.reportTimeout = d
		}
	}
}

// Server wires HTTP routes for the inference and analytics API.
type Server struct {
	reportTimeout time.Duration

	healthHandler  *HealthHandler
	predictHandler *PredictHandler
	reportHandler  *ReportHandler
	statsHandler   *StatsHandler
	metricsHandler http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler(deps)
	s.predictHandler = NewPredictHandler(deps)
	s.reportHandler = NewReportHandler(deps, s.reportTimeout)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.metricsHandler = promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/health/model", MetricsMiddleware(s.healthHandler.HandleModelHealth, "health_model"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/report/threat-intel", MetricsMiddleware(s.reportHandler.HandleThreatIntel, "report_threat_intel"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.metricsHandler.ServeHTTP, "metrics"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
