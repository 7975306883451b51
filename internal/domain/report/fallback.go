package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	classify "github.com/SanatanSinghVishen/Tracel/internal/domain/classify"
	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	stats "github.com/SanatanSinghVishen/Tracel/internal/domain/stats"
	"github.com/SanatanSinghVishen/Tracel/pkg/metrics"
)

// fallback computes the report in-process from raw pulled events. It
// serves stores without aggregation support and the explicit full-pull
// mode; the document cap makes it an approximation on large windows.
func (e *Engine) fallback(ctx context.Context, q Query, win Window) (*ThreatIntel, error) {
	metrics.RecordReportFallback()

	events, err := e.store.CollectEvents(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("collect events: %w", err)
	}

	sum, scores := summarize(events, q)
	return assemble(win, sum, e.resolveLocal(scores)), nil
}

// summarize filters the pulled events to the window and rebuilds the
// aggregates the store would otherwise compute. Events without a
// parseable timestamp never enter any aggregate.
func summarize(events []model.ThreatEvent, q Query) (Summary, []float64) {
	sum := Summary{Vectors: make(map[string]int64)}

	type ipAgg struct {
		ip    string
		count int64
		last  time.Time
	}
	ips := make(map[string]*ipAgg)
	countries := make(map[string]int64)
	var scores []float64

	for _, ev := range events {
		if !ev.HasTimestamp() || ev.Timestamp.Before(q.Since) || !ev.Timestamp.Before(q.Until) {
			continue
		}
		sum.Total++
		sum.Vectors[classify.AttackVector(ev.AttackVector, ev.Method, ev.Bytes)]++
		countries[classify.Country(ev.SourceCountry, ev.SourceIP)]++

		agg := ips[ev.SourceIP]
		if agg == nil {
			agg = &ipAgg{ip: ev.SourceIP}
			ips[ev.SourceIP] = agg
		}
		agg.count++
		if ev.Timestamp.After(agg.last) {
			agg.last = ev.Timestamp
		}

		if ev.HasScore() {
			scores = append(scores, ev.Score)
		}
	}

	sort.Float64s(scores)
	sum.Scored = int64(len(scores))
	if sum.Scored > 0 {
		sum.MinScore = scores[0]
		sum.MaxScore = scores[sum.Scored-1]
	}

	ranked := make([]*ipAgg, 0, len(ips))
	for _, agg := range ips {
		ranked = append(ranked, agg)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		if !ranked[i].last.Equal(ranked[j].last) {
			return ranked[i].last.After(ranked[j].last)
		}
		return ranked[i].ip < ranked[j].ip
	})
	if len(ranked) > TopK {
		ranked = ranked[:TopK]
	}
	sum.TopIPs = make([]IPActivity, 0, len(ranked))
	for _, agg := range ranked {
		last := agg.last
		sum.TopIPs = append(sum.TopIPs, IPActivity{IP: agg.ip, Count: agg.count, LastSeen: &last})
	}

	byCountry := make([]CountryActivity, 0, len(countries))
	for name, count := range countries {
		byCountry = append(byCountry, CountryActivity{Name: name, Count: count})
	}
	sort.Slice(byCountry, func(i, j int) bool {
		if byCountry[i].Count != byCountry[j].Count {
			return byCountry[i].Count > byCountry[j].Count
		}
		return byCountry[i].Name < byCountry[j].Name
	})
	if len(byCountry) > TopK {
		byCountry = byCountry[:TopK]
	}
	sum.Countries = byCountry

	return sum, scores
}

// resolveLocal mirrors resolveBuckets over an in-memory sorted score
// list.
func (e *Engine) resolveLocal(scores []float64) resolution {
	var res resolution
	s := int64(len(scores))
	if s == 0 {
		return res
	}

	if scores[s-1]-scores[0] < e.epsilon {
		nObv := stats.CeilFrac(s, obviousShare)
		nSub := stats.CeilFrac(s, subtleShare)
		if nObv+nSub > s {
			nSub = s - nObv
		}
		o, su := scores[nObv-1], scores[nObv+nSub-1]
		res.obviousLe, res.subtleLe = &o, &su
		res.obvious, res.subtle = nObv, nSub
		return res
	}

	qObv := stats.Quantile(scores, obviousQuantile)
	qSub := stats.Quantile(scores, subtleQuantile)
	res.obviousLe, res.subtleLe = &qObv, &qSub
	for _, sc := range scores {
		switch {
		case sc <= qObv:
			res.obvious++
		case sc <= qSub:
			res.subtle++
		}
	}
	return res
}
