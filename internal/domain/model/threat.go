package model

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// ThreatEvent is a stored anomalous telemetry document as read back from
// the event store. Ingestion is owned elsewhere, so every field is
// optional and loosely typed in the store; this shape holds the coerced
// view the report fallback path works on.
type ThreatEvent struct {
	OwnerUserID   string
	SourceIP      string
	Method        string
	Bytes         float64
	Timestamp     time.Time // zero when absent or unparseable
	Score         float64   // NaN when absent or non-numeric
	AttackVector  string    // explicit override, may be empty
	SourceCountry string    // explicit override, may be empty
}

// HasTimestamp reports whether the stored timestamp was parseable.
// Events without one are excluded from window-bounded aggregates.
func (e ThreatEvent) HasTimestamp() bool { return !e.Timestamp.IsZero() }

// HasScore reports whether the stored anomaly score was numeric.
func (e ThreatEvent) HasScore() bool { return !math.IsNaN(e.Score) }

// ThreatEventFromBSON coerces a raw store document field by field.
func ThreatEventFromBSON(doc bson.M) ThreatEvent {
	e := ThreatEvent{Score: math.NaN()}
	e.OwnerUserID = toString(doc["owner_user_id"])
	e.SourceIP = toString(doc["source_ip"])
	e.Method = toString(doc["method"])
	if f, ok := toFloat(doc["bytes"]); ok {
		e.Bytes = f
	}
	if ts, ok := toTime(doc["timestamp"]); ok {
		e.Timestamp = ts.UTC()
	}
	if f, ok := toFloat(doc["anomaly_score"]); ok {
		e.Score = f
	}
	e.AttackVector = toString(doc["attack_vector"])
	e.SourceCountry = toString(doc["source_country"])
	return e
}

// AnomalyFlagValues lists the stored representations accepted as "this
// event is an anomaly". Ingestion has written all four over time, so both
// query filters and in-process checks must match the full set.
func AnomalyFlagValues() []any {
	return []any{true, int32(1), "true", "True"}
}

// timestampLayouts covers the string forms observed in stored documents:
// RFC 3339 with or without fractional seconds, plus naive date-times that
// are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp tolerantly parses a stored timestamp string. The boolean
// is false when no known layout matches; callers must exclude such events
// from windowed aggregates rather than substitute a sentinel time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
