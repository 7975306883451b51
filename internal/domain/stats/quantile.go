// Package stats provides the exact rank statistics used by the report
// engine. The rank/interpolation split exists so the engine can fetch
// only the bracketing ranks from the store instead of the full score set.
package stats

import "math"

// Quantile computes the linearly interpolated quantile of an ascending
// score list at fraction q: with p = (n-1)*q, lo = floor(p), hi =
// ceil(p), the result is scores[lo] when lo == hi, otherwise
// scores[lo]*(1-w) + scores[hi]*w with w = p - lo. A single-element list
// yields that element for any q; an empty list yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	n := int64(len(sorted))
	if n == 0 {
		return math.NaN()
	}
	lo, hi, w := Ranks(n, q)
	return Interpolate(sorted[lo], sorted[hi], w)
}

// Ranks returns the two 0-based ranks bracketing the quantile position
// for a distribution of n scores, plus the interpolation weight of the
// upper rank.
func Ranks(n int64, q float64) (lo, hi int64, w float64) {
	if n <= 1 {
		return 0, 0, 0
	}
	p := float64(n-1) * q
	lo = int64(math.Floor(p))
	hi = int64(math.Ceil(p))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo > hi {
		lo = hi
	}
	w = p - float64(lo)
	if w < 0 {
		w = 0
	}
	return lo, hi, w
}

// Interpolate combines the two bracketing rank values. A zero weight
// returns the lower value exactly, avoiding FP drift on exact ranks.
func Interpolate(loVal, hiVal, w float64) float64 {
	if w == 0 {
		return loVal
	}
	return loVal*(1-w) + hiVal*w
}

// CeilFrac returns ceil(n*frac), the bucket size rule used by the
// rank-based fallback when a score range collapses.
func CeilFrac(n int64, frac float64) int64 {
	if n <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(n) * frac))
}
