// Package report builds SOC-facing threat-intelligence summaries from
// stored anomaly events.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	classify "github.com/SanatanSinghVishen/Tracel/internal/domain/classify"
	stats "github.com/SanatanSinghVishen/Tracel/internal/domain/stats"
	"github.com/SanatanSinghVishen/Tracel/pkg/logger"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// Bucket boundaries. The quantile pair splits by score value; the share
// pair sizes the rank-based split used when the score range collapses.
const (
	obviousQuantile = 0.20
	subtleQuantile  = 0.60
	obviousShare    = 0.20
	subtleShare     = 0.40
)

// DefaultEpsilon is the score-range width below which the value-based
// quantile split is considered degenerate.
const DefaultEpsilon = 1e-9

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEpsilon sets the degenerate-range epsilon.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// WithClock sets the time source used to anchor report windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFullPull forces the degraded collect-and-compute path instead of
// store-side aggregation.
func WithFullPull(enabled bool) Option {
	return func(e *Engine) {
		e.fullPull = enabled
	}
}

// Engine computes threat-intelligence reports over a Store.
type Engine struct {
	store    Store
	epsilon  float64
	fullPull bool
	now      func() time.Time
	logger   logger.Logger
}

// NewEngine creates a report engine over the given store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		epsilon: DefaultEpsilon,
		now:     time.Now,
		logger:  logger.Get().Named("report"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// resolution is the confidence-bucket outcome: the two cutoffs and the
// Obvious/Subtle counts. Other is derived from the window total.
type resolution struct {
	obviousLe *float64
	subtleLe  *float64
	obvious   int64
	subtle    int64
}

// ThreatIntel computes the report for the requested window.
func (e *Engine) ThreatIntel(ctx context.Context, p Params) (*ThreatIntel, error) {
	start := time.Now()

	now := e.now().UTC()
	hours := clampInt(p.SinceHours, MinSinceHours, MaxSinceHours)
	win, since := newWindow(now, hours)
	q := Query{
		Since:   since,
		Until:   now,
		OwnerID: strings.TrimSpace(p.OwnerID),
		Limit:   clampInt64(p.Limit, MinPullLimit, MaxPullLimit),
	}

	rep, err := e.run(ctx, q, win)
	if err != nil {
		metrics.RecordReportError()
		e.logger.Error(ctx, "threat report failed",
			logger.Int("sinceHours", hours),
			logger.Error(err),
		)
		return nil, err
	}

	metrics.RecordReportLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateTotalThreats(int(rep.TotalThreats))
	e.logger.Debug(ctx, "threat report built",
		logger.Int("sinceHours", hours),
		logger.Int64("totalThreats", rep.TotalThreats),
	)
	return rep, nil
}

func (e *Engine) run(ctx context.Context, q Query, win Window) (*ThreatIntel, error) {
	if e.fullPull {
		return e.fallback(ctx, q, win)
	}

	sum, err := e.store.Summary(ctx, q)
	if errors.Is(err, ErrAggregationUnsupported) {
		e.logger.Warn(ctx, "store cannot aggregate server-side, collecting events in-process")
		return e.fallback(ctx, q, win)
	}
	if err != nil {
		return nil, fmt.Errorf("threat summary: %w", err)
	}

	res, err := e.resolveBuckets(ctx, q, sum)
	if err != nil {
		return nil, err
	}
	return assemble(win, sum, res), nil
}

// resolveBuckets turns the summary's score statistics into cutoffs and
// bucket counts, fetching only the handful of ranked scores it needs.
func (e *Engine) resolveBuckets(ctx context.Context, q Query, sum Summary) (resolution, error) {
	var res resolution
	s := sum.Scored
	if s == 0 {
		return res, nil
	}

	if sum.MaxScore-sum.MinScore < e.epsilon {
		// Collapsed range: split by rank instead of by value.
		nObv := stats.CeilFrac(s, obviousShare)
		nSub := stats.CeilFrac(s, subtleShare)
		if nObv+nSub > s {
			nSub = s - nObv
		}
		rObv, rSub := nObv-1, nObv+nSub-1
		at, err := e.store.ScoreAtRanks(ctx, q, []int64{rObv, rSub})
		if err != nil {
			return res, fmt.Errorf("rank scores: %w", err)
		}
		o, su := at[rObv], at[rSub]
		res.obviousLe, res.subtleLe = &o, &su
		res.obvious, res.subtle = nObv, nSub
		return res, nil
	}

	loO, hiO, wO := stats.Ranks(s, obviousQuantile)
	loS, hiS, wS := stats.Ranks(s, subtleQuantile)
	at, err := e.store.ScoreAtRanks(ctx, q, []int64{loO, hiO, loS, hiS})
	if err != nil {
		return res, fmt.Errorf("rank scores: %w", err)
	}
	qObv := stats.Interpolate(at[loO], at[hiO], wO)
	qSub := stats.Interpolate(at[loS], at[hiS], wS)

	b, err := e.store.BucketCounts(ctx, q, qObv, qSub)
	if err != nil {
		return res, fmt.Errorf("bucket counts: %w", err)
	}
	res.obviousLe, res.subtleLe = &qObv, &qSub
	res.obvious = b.ObviousLE
	res.subtle = b.SubtleLE - b.ObviousLE
	return res, nil
}

func assemble(win Window, sum Summary, res resolution) *ThreatIntel {
	return &ThreatIntel{
		OK:                       true,
		Window:                   win,
		TotalThreats:             sum.Total,
		TopHostileIPs:            formatIPs(sum.TopIPs),
		AttackVectorDistribution: vectorDist(sum.Vectors),
		GeoTopCountries:          countryDist(sum.Countries, sum.Total),
		AIConfidenceDefinition:   legend(),
		AIConfidenceThresholds:   Thresholds{ObviousLe: res.obviousLe, SubtleLe: res.subtleLe},
		AIConfidenceDistribution: []BucketCount{
			{Bucket: "Obvious", Count: res.obvious},
			{Bucket: "Subtle", Count: res.subtle},
			{Bucket: "Other", Count: sum.Total - res.obvious - res.subtle},
		},
	}
}

func formatIPs(ips []IPActivity) []HostileIP {
	out := make([]HostileIP, 0, len(ips))
	for _, ip := range ips {
		entry := HostileIP{IP: ip.IP, Count: ip.Count}
		if ip.LastSeen != nil {
			iso := isoUTC(*ip.LastSeen)
			entry.LastSeen = &iso
		}
		out = append(out, entry)
	}
	return out
}

// vectorDist emits all three categories in fixed order, zero-filled.
func vectorDist(counts map[string]int64) []NameValue {
	names := classify.Vectors()
	out := make([]NameValue, 0, len(names))
	for _, name := range names {
		out = append(out, NameValue{Name: name, Value: counts[name]})
	}
	return out
}

func countryDist(countries []CountryActivity, total int64) []GeoCountry {
	out := make([]GeoCountry, 0, len(countries))
	for _, c := range countries {
		pct := 0
		if total > 0 {
			pct = int(math.RoundToEven(float64(c.Count) / float64(total) * 100))
		}
		out = append(out, GeoCountry{Name: c.Name, Count: c.Count, Pct: pct})
	}
	return out
}

func legend() Legend {
	return Legend{
		Method:  "quantiles",
		Obvious: "lowest ~20% anomaly scores (most suspicious)",
		Subtle:  "next ~40% anomaly scores",
		Other:   "remaining scores",
		Note:    "Buckets are relative to the selected time window.",
	}
}
