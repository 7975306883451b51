package report

import (
	"strconv"
	"time"
)

// Window clamps and the degraded-mode document cap.
const (
	DefaultSinceHours = 24
	MinSinceHours     = 1
	MaxSinceHours     = 168

	DefaultPullLimit = 10000
	MinPullLimit     = 1
	MaxPullLimit     = 50000
)

// SinceHours parses a raw sinceHours request value. Unparseable input
// falls back to the default; parseable input is clamped to the allowed
// range.
func SinceHours(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultSinceHours
	}
	return clampInt(n, MinSinceHours, MaxSinceHours)
}

// PullLimit parses a raw limit request value for the degraded
// collect-and-compute path.
func PullLimit(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return DefaultPullLimit
	}
	return clampInt64(n, MinPullLimit, MaxPullLimit)
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampInt64(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// isoUTC renders an instant the way report consumers expect:
// microsecond precision with a trailing Z.
func isoUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

// newWindow anchors a report window of the given hour span ending now.
func newWindow(now time.Time, hours int) (Window, time.Time) {
	since := now.Add(-time.Duration(hours) * time.Hour)
	return Window{
		Since:      isoUTC(since),
		To:         isoUTC(now),
		SinceHours: hours,
	}, since
}
