package probe

import (
	"fmt"
	"log"
	"sort"

	stats "github.com/SanatanSinghVishen/Tracel/internal/domain/stats"
)

// Quantile fractions reported in the distribution line. They match the
// confidence-bucket cutoffs the report endpoint derives.
const (
	obviousQuantile = 0.20
	subtleQuantile  = 0.60
)

// printSummary logs per-scenario aggregates and the overall score
// distribution. Flagged counts compare against the artifact threshold
// when the bundle carries one.
func printSummary(scenarios []Scenario, outcomes []outcome, threshold *float64) {
	perScenario := make([][]float64, len(scenarios))
	failures := make([]int, len(scenarios))
	var all []float64

	for _, o := range outcomes {
		if o.err != nil {
			failures[o.scenario]++
			continue
		}
		perScenario[o.scenario] = append(perScenario[o.scenario], o.score)
		all = append(all, o.score)
	}

	log.Printf("📊 per-scenario scores:")
	for i, sc := range scenarios {
		scores := perScenario[i]
		if len(scores) == 0 {
			log.Printf("  %-22s no successful scores (%d failed)", sc.Name, failures[i])
			continue
		}
		mn, mean, mx := minMeanMax(scores)
		line := ""
		if threshold != nil {
			line = flaggedSuffix(scores, *threshold)
		}
		log.Printf("  %-22s n=%d min=%.6f mean=%.6f max=%.6f%s", sc.Name, len(scores), mn, mean, mx, line)
	}

	if len(all) == 0 {
		return
	}

	sort.Float64s(all)
	mn, mean, mx := minMeanMax(all)
	log.Printf("📈 distribution: n=%d min=%.6f mean=%.6f max=%.6f q%02.0f=%.6f q%02.0f=%.6f",
		len(all), mn, mean, mx,
		obviousQuantile*100, stats.Quantile(all, obviousQuantile),
		subtleQuantile*100, stats.Quantile(all, subtleQuantile),
	)

	if threshold != nil {
		flagged := 0
		for _, s := range all {
			if s <= *threshold {
				flagged++
			}
		}
		log.Printf("🚨 %d/%d payloads at or below the calibrated threshold %.6f", flagged, len(all), *threshold)
	}
}

// flaggedSuffix renders the per-scenario flagged count.
func flaggedSuffix(scores []float64, threshold float64) string {
	flagged := 0
	for _, s := range scores {
		if s <= threshold {
			flagged++
		}
	}
	return fmt.Sprintf(" flagged=%d/%d", flagged, len(scores))
}

// minMeanMax computes the basic aggregates of a non-empty score list.
func minMeanMax(scores []float64) (mn, mean, mx float64) {
	mn, mx = scores[0], scores[0]
	sum := 0.0
	for _, s := range scores {
		if s < mn {
			mn = s
		}
		if s > mx {
			mx = s
		}
		sum += s
	}
	return mn, sum / float64(len(scores)), mx
}
