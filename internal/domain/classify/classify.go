// Package classify implements the two-tier classification policy used at
// report time: an explicit stored value always wins, otherwise a
// deterministic derivation applies. Both rules are pure per-row functions
// so the store adapter can mirror them as query-side expressions.
package classify

import (
	"strconv"
	"strings"
)

// Attack vector categories, in report order.
const (
	VectorVolumetric  = "Volumetric"
	VectorProtocol    = "Protocol"
	VectorApplication = "Application"
)

// VolumetricBytes is the byte count at and above which traffic is
// classified volumetric regardless of method.
const VolumetricBytes = 7000

// Vectors returns the three categories in report order.
func Vectors() []string {
	return []string{VectorVolumetric, VectorProtocol, VectorApplication}
}

// applicationMethods are the HTTP methods whose traffic is classified as
// application-layer when the byte rule does not apply.
var applicationMethods = []string{"POST", "PUT", "PATCH", "DELETE"}

// ApplicationMethods returns the method set classified as
// application-layer, for store adapters that mirror the derivation
// query-side.
func ApplicationMethods() []string {
	out := make([]string, len(applicationMethods))
	copy(out, applicationMethods)
	return out
}

// countries is ordered; the index derived from a source address selects
// an entry, and the same ordering is baked into the dashboard's geo
// rendering. Never reorder or resize without a coordinated migration.
var countries = []string{
	"United States",
	"Canada",
	"Brazil",
	"United Kingdom",
	"Germany",
	"Russia",
	"China",
	"Japan",
	"Australia",
	"South Africa",
}

// Countries returns the fixed, order-significant country list.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// AttackVector classifies one event. An explicit value matches by
// case-insensitive prefix; anything unrecognized falls through to the
// derivation.
func AttackVector(explicit, method string, bytes float64) string {
	switch v := strings.ToLower(strings.TrimSpace(explicit)); {
	case strings.HasPrefix(v, "vol"):
		return VectorVolumetric
	case strings.HasPrefix(v, "prot"):
		return VectorProtocol
	case strings.HasPrefix(v, "app"):
		return VectorApplication
	}
	return DeriveAttackVector(method, bytes)
}

// DeriveAttackVector applies the fallback heuristic: the byte rule is
// checked before the method rule.
func DeriveAttackVector(method string, bytes float64) string {
	if bytes >= VolumetricBytes {
		return VectorVolumetric
	}
	m := strings.ToUpper(strings.TrimSpace(method))
	for _, app := range applicationMethods {
		if m == app {
			return VectorApplication
		}
	}
	return VectorProtocol
}

// Country resolves the geographic origin of one event. A non-empty
// explicit value is used verbatim.
func Country(explicit, sourceIP string) string {
	if c := strings.TrimSpace(explicit); c != "" {
		return c
	}
	return DeriveCountry(sourceIP)
}

// DeriveCountry maps a source address onto the fixed country list by the
// absolute value of its first dot-delimited segment modulo the list
// length. Unparseable segments select index 0.
func DeriveCountry(sourceIP string) string {
	seg, _, _ := strings.Cut(strings.TrimSpace(sourceIP), ".")
	n, err := strconv.Atoi(seg)
	if err != nil {
		return countries[0]
	}
	idx := n % len(countries)
	if idx < 0 {
		idx = -idx
	}
	return countries[idx]
}
