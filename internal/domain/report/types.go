package report

import (
	"context"
	"time"

	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
)

// TopK caps the top-offender lists. It is part of the report contract,
// not a tuning knob.
const TopK = 5

// Params are the raw report-request inputs before clamping.
type Params struct {
	SinceHours int
	Limit      int64
	OwnerID    string
}

// ThreatIntel is the full report payload.
type ThreatIntel struct {
	OK                       bool          `json:"ok"`
	Window                   Window        `json:"window"`
	TotalThreats             int64         `json:"totalThreats"`
	TopHostileIPs            []HostileIP   `json:"topHostileIps"`
	AttackVectorDistribution []NameValue   `json:"attackVectorDistribution"`
	GeoTopCountries          []GeoCountry  `json:"geoTopCountries"`
	AIConfidenceDefinition   Legend        `json:"aiConfidenceDefinition"`
	AIConfidenceThresholds   Thresholds    `json:"aiConfidenceThresholds"`
	AIConfidenceDistribution []BucketCount `json:"aiConfidenceDistribution"`
}

// Window is the report's half-open time range in wire form.
type Window struct {
	Since      string `json:"since"`
	To         string `json:"to"`
	SinceHours int    `json:"sinceHours"`
}

// HostileIP is one ranked offender entry.
type HostileIP struct {
	IP       string  `json:"ip"`
	Count    int64   `json:"count"`
	LastSeen *string `json:"lastSeen"`
}

// NameValue is one attack-vector distribution entry.
type NameValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// GeoCountry is one geographic distribution entry. Pct is the share of
// all in-window threats, rounded half to even.
type GeoCountry struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Pct   int    `json:"pct"`
}

// Legend documents the bucketing method for report consumers.
type Legend struct {
	Method  string `json:"method"`
	Obvious string `json:"obvious"`
	Subtle  string `json:"subtle"`
	Other   string `json:"other"`
	Note    string `json:"note"`
}

// Thresholds are the two score cutoffs. Both are null when the window
// holds no scored events.
type Thresholds struct {
	ObviousLe *float64 `json:"obviousLe"`
	SubtleLe  *float64 `json:"subtleLe"`
}

// BucketCount is one confidence-bucket entry.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// Query bounds one report computation against the store.
type Query struct {
	Since   time.Time
	Until   time.Time
	OwnerID string
	// Limit caps the documents pulled by CollectEvents. Aggregating
	// calls ignore it.
	Limit int64
}

// Summary is the aggregate bundle a store computes in one windowed pass.
type Summary struct {
	// Total counts every matched in-window event, scored or not.
	Total int64
	// Scored counts events carrying a numeric anomaly score.
	Scored   int64
	MinScore float64
	MaxScore float64
	// Vectors holds per-category event counts keyed by vector name.
	Vectors map[string]int64
	// TopIPs is ranked by count descending, then most recent event,
	// then address, at most TopK entries.
	TopIPs []IPActivity
	// Countries is ranked by count descending then name, at most TopK
	// entries.
	Countries []CountryActivity
}

// IPActivity is one source address aggregate.
type IPActivity struct {
	IP       string
	Count    int64
	LastSeen *time.Time
}

// CountryActivity is one country aggregate.
type CountryActivity struct {
	Name  string
	Count int64
}

// Buckets are cumulative scored-event counts at or below each cutoff.
type Buckets struct {
	ObviousLE int64
	SubtleLE  int64
}

// Store is the event-store capability the engine aggregates against.
// Implementations push classification and rank selection down to the
// store; the engine never materializes the window in memory except on
// the degraded CollectEvents path.
type Store interface {
	// Summary computes the window aggregates in one store-side pass.
	Summary(ctx context.Context, q Query) (Summary, error)
	// ScoreAtRanks returns the score at each requested rank of the
	// ascending in-window score list. Ranks are zero-based and must be
	// within [0, Scored-1].
	ScoreAtRanks(ctx context.Context, q Query, ranks []int64) (map[int64]float64, error)
	// BucketCounts counts scored in-window events at or below each
	// cutoff.
	BucketCounts(ctx context.Context, q Query, obviousLe, subtleLe float64) (Buckets, error)
	// CollectEvents pulls raw matched events, newest first, capped at
	// q.Limit. Window filtering is left to the caller so loosely
	// formatted timestamps can be handled in-process.
	CollectEvents(ctx context.Context, q Query) ([]model.ThreatEvent, error)
}
