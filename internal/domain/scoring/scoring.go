// Package scoring turns raw telemetry into anomaly scores.
package scoring

import (
	"context"
	"time"

	feature "github.com/SanatanSinghVishen/Tracel/internal/domain/feature"
	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	ml "github.com/SanatanSinghVishen/Tracel/internal/ml"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// Option applies a configuration option to the ModelScorer.
type Option func(*ModelScorer)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *ModelScorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// Result contains the computed score for one telemetry payload.
type Result struct {
	// Score is the raw decision-function value. Lower is more anomalous.
	Score float64
	// ID echoes the caller's correlation id, or nil when none was sent.
	ID any
}

// Scorer computes an anomaly score from one telemetry payload.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, t model.Telemetry) (Result, error)
}

// ModelScorer implements Scorer over the process-lifetime model artifact.
type ModelScorer struct {
	loader *ml.Loader
	logger logger.Logger
}

// NewModelScorer creates a scorer backed by the given artifact loader.
func NewModelScorer(loader *ml.Loader, opts ...Option) *ModelScorer {
	s := &ModelScorer{
		loader: loader,
		logger: logger.Get().Named("scoring"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score encodes the telemetry and replays it through the loaded forest.
func (s *ModelScorer) Score(ctx context.Context, t model.Telemetry) (Result, error) {
	start := time.Now()

	art, err := s.loader.Load(ctx)
	if err != nil {
		metrics.RecordScoringError()
		return Result{}, err
	}

	score, err := art.Score(feature.Transform(t))
	if err != nil {
		metrics.RecordScoringError()
		s.logger.Error(ctx, "scoring failed", logger.Error(err))
		return Result{}, err
	}

	metrics.RecordPrediction()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	s.logger.Debug(ctx, "telemetry scored",
		logger.Float64("score", score),
		logger.String("protocol", t.Protocol.String()),
		logger.Int("dst_port", t.DstPort),
	)

	return Result{Score: score, ID: t.ID}, nil
}
