// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	repository "github.com/SanatanSinghVishen/Tracel/internal/adapters/repository"
	"github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	"github.com/SanatanSinghVishen/Tracel/internal/domain/report"
	"github.com/SanatanSinghVishen/Tracel/internal/domain/scoring"
	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// closeTimeout bounds event-store disconnect during Stop.
const closeTimeout = 5 * time.Second

// Service implements the API dependencies for the AI engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	loader *ml.Loader
	scorer scoring.Scorer
	store  *repository.MongoStore
	engine *report.Engine

	// Configuration
	modelPath        string
	mongoURL         string
	mongoDBName      string
	mongoCollection  string
	selectionTimeout time.Duration
	aggregation      bool
	epsilon          float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the model artifact location.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithMongoURL sets the event-store connection string. Empty leaves the
// store unconfigured; report requests then fail with the store
// unavailable reason.
func WithMongoURL(uri string) Option {
	return func(s *Service) {
		s.mongoURL = uri
	}
}

// WithMongoDatabase overrides automatic database selection.
func WithMongoDatabase(name string) Option {
	return func(s *Service) {
		s.mongoDBName = name
	}
}

// WithMongoCollection sets the anomaly event collection name.
func WithMongoCollection(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.mongoCollection = name
		}
	}
}

// WithMongoSelectionTimeout bounds server selection on first contact.
func WithMongoSelectionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.selectionTimeout = d
		}
	}
}

// WithReportAggregation toggles store-side report aggregation. Disabled,
// every report walks the degraded full-pull path.
func WithReportAggregation(enabled bool) Option {
	return func(s *Service) {
		s.aggregation = enabled
	}
}

// WithQuantileEpsilon sets the score-range width treated as degenerate
// by confidence bucketing.
func WithQuantileEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath:        "model.json",
		mongoCollection:  "packets",
		selectionTimeout: 1500 * time.Millisecond,
		aggregation:      true,
		epsilon:          report.DefaultEpsilon,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components. The model artifact and the
// store connection are both brought up lazily on first use, so Start
// never touches the disk or the network.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ai engine service...")

	// Initialize components
	s.loader = ml.NewLoader(s.modelPath)
	s.scorer = scoring.NewModelScorer(s.loader)

	storeOpts := []repository.Option{
		repository.WithCollection(s.mongoCollection),
		repository.WithSelectionTimeout(s.selectionTimeout),
		repository.WithAggregation(s.aggregation),
	}
	if s.mongoDBName != "" {
		storeOpts = append(storeOpts, repository.WithDatabase(s.mongoDBName))
	}
	s.store = repository.NewMongoStore(s.mongoURL, storeOpts...)

	s.engine = report.NewEngine(s.store, report.WithEpsilon(s.epsilon))

	s.started = true
	s.logger.Info(ctx, "ai engine service started",
		logger.String("modelPath", s.modelPath),
		logger.Bool("storeConfigured", s.mongoURL != ""),
		logger.Bool("aggregation", s.aggregation),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping ai engine service...")

	// Disconnect the event store
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := s.store.Close(ctx); err != nil {
			s.logger.Warn(ctx, "event store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "ai engine service stopped")
}

// Score runs the model over one telemetry payload.
func (s *Service) Score(ctx context.Context, t model.Telemetry) (scoring.Result, error) {
	return s.scorer.Score(ctx, t)
}

// ThreatIntel builds the windowed threat-intelligence report.
func (s *Service) ThreatIntel(ctx context.Context, p report.Params) (*report.ThreatIntel, error) {
	return s.engine.ThreatIntel(ctx, p)
}

// ModelStatus reports the loader's current view without triggering a
// load attempt.
func (s *Service) ModelStatus() ml.Status {
	return s.loader.Snapshot()
}

// ReloadModel re-runs the artifact load from disk, overwriting any
// cached success or failure.
func (s *Service) ReloadModel(ctx context.Context) (*ml.Artifact, error) {
	return s.loader.ForceReload(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"service": "tracel-ai-engine",
		"started": s.started,
	}

	if !s.started {
		return stats
	}

	st := s.loader.Snapshot()
	stats["modelPath"] = st.Path
	stats["modelLoadAttempted"] = st.Attempted
	stats["modelLoaded"] = st.Loaded
	if st.Loaded {
		stats["modelType"] = st.Type
	}
	if st.Err != nil {
		stats["modelError"] = st.Err.Error()
	}

	stats["storeConfigured"] = s.mongoURL != ""
	stats["reportAggregation"] = s.aggregation

	// Update metrics
	metrics.UpdateModelLoaded(st.Loaded)

	return stats
}
