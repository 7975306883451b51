package ml

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// Loader loads the model artifact at most once per process. The first
// caller performs the load while racers wait on the mutex; afterwards
// every read is a single atomic pointer load. Success and failure both
// stick until an operator forces a reload.
type Loader struct {
	path   string
	mu     sync.Mutex
	state  atomic.Pointer[loadState]
	logger logger.Logger
}

// loadState is published atomically so callers never observe a partially
// constructed artifact.
type loadState struct {
	artifact *Artifact
	err      error
}

// Status is a point-in-time loader view for health reporting. It never
// triggers a load.
type Status struct {
	Attempted bool
	Loaded    bool
	Err       error
	Type      string
	Path      string
	Threshold *float64
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader creates a loader for the artifact at path. Nothing is read
// until the first Load call.
func NewLoader(path string, opts ...Option) *Loader {
	ld := &Loader{
		path:   path,
		logger: logger.Get().Named("ml"),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load returns the cached artifact, performing the load on first use.
// A cached failure is returned as-is: failed loads are never silently
// retried.
func (ld *Loader) Load(ctx context.Context) (*Artifact, error) {
	if st := ld.state.Load(); st != nil {
		return st.artifact, st.wrapErr()
	}

	ld.mu.Lock()
	defer ld.mu.Unlock()
	// A racer may have finished the load while we waited.
	if st := ld.state.Load(); st != nil {
		return st.artifact, st.wrapErr()
	}
	st := ld.load(ctx)
	ld.state.Store(st)
	return st.artifact, st.wrapErr()
}

// ForceReload re-runs the full load attempt and overwrites the cached
// state, success or failure. It exists for operator-triggered health
// probes only.
func (ld *Loader) ForceReload(ctx context.Context) (*Artifact, error) {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	metrics.RecordModelReload()
	st := ld.load(ctx)
	ld.state.Store(st)
	return st.artifact, st.wrapErr()
}

// Snapshot reports the current state without triggering a load.
func (ld *Loader) Snapshot() Status {
	s := Status{Path: ld.path}
	st := ld.state.Load()
	if st == nil {
		return s
	}
	s.Attempted = true
	s.Err = st.err
	if st.artifact != nil {
		s.Loaded = true
		s.Type = st.artifact.Type()
		s.Threshold = st.artifact.Threshold
	}
	return s
}

func (ld *Loader) load(ctx context.Context) *loadState {
	ld.logger.Info(ctx, "loading model artifact", logger.String("path", ld.path))

	data, err := os.ReadFile(ld.path)
	if os.IsNotExist(err) {
		return ld.failed(ctx, fmt.Errorf("model file not found at %s", ld.path))
	}
	if err != nil {
		return ld.failed(ctx, fmt.Errorf("failed to load model from %s: %w", ld.path, err))
	}

	artifact, err := ParseArtifact(data)
	if err != nil {
		return ld.failed(ctx, fmt.Errorf("failed to load model from %s: %w", ld.path, err))
	}

	metrics.UpdateModelLoaded(true)
	ld.logger.Info(ctx, "model artifact loaded",
		logger.String("type", artifact.Type()),
		logger.Int("trees", len(artifact.Forest.Trees)),
		logger.Bool("calibrated", artifact.Threshold != nil),
	)
	return &loadState{artifact: artifact}
}

func (ld *Loader) failed(ctx context.Context, err error) *loadState {
	metrics.UpdateModelLoaded(false)
	metrics.RecordModelLoadFailure()
	ld.logger.Error(ctx, "model artifact unavailable", logger.Error(err))
	return &loadState{err: err}
}

func (st *loadState) wrapErr() error {
	if st.err == nil {
		return nil
	}
	return &UnavailableError{Reason: st.err}
}
