package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	classify "github.com/SanatanSinghVishen/Tracel/internal/domain/classify"
	model "github.com/SanatanSinghVishen/Tracel/internal/domain/model"
	report "github.com/SanatanSinghVishen/Tracel/internal/domain/report"
)

// Stored document field names. Ingestion is owned by the capture
// pipeline, so these are an external contract.
const (
	fieldAnomaly   = "is_anomaly"
	fieldOwner     = "owner_user_id"
	fieldTimestamp = "timestamp"
	fieldScore     = "anomaly_score"
	fieldSourceIP  = "source_ip"
	fieldMethod    = "method"
	fieldBytes     = "bytes"
	fieldVector    = "attack_vector"
	fieldCountry   = "source_country"
)

// Computed per-document fields added before windowing. Stored timestamps
// and scores are loosely typed, so both are converted tolerantly and
// unconvertible values become null.
const (
	computedTimestamp = "__ts"
	computedScore     = "__score"
)

// matchFilter is the base document filter: the anomaly flag in any of
// its stored representations, plus the optional owner scope.
func matchFilter(q report.Query) bson.M {
	filter := bson.M{fieldAnomaly: bson.M{"$in": model.AnomalyFlagValues()}}
	if q.OwnerID != "" {
		filter[fieldOwner] = q.OwnerID
	}
	return filter
}

// windowStages opens every aggregating pipeline: match the anomaly
// filter, derive typed timestamp and score, and bound the half-open
// report window. Documents whose timestamp cannot be converted are
// excluded, mirroring the in-process fallback.
func windowStages(q report.Query) []bson.M {
	return []bson.M{
		{"$match": matchFilter(q)},
		{"$addFields": bson.M{
			computedTimestamp: convertExpr("$"+fieldTimestamp, "date", nil),
			computedScore:     convertExpr("$"+fieldScore, "double", nil),
		}},
		{"$match": bson.M{computedTimestamp: bson.M{"$gte": q.Since, "$lt": q.Until}}},
	}
}

// summaryPipeline computes every windowed aggregate in a single pass:
// totals and score extremes, the per-vector counts, and the ranked
// country and source address lists.
func summaryPipeline(q report.Query) []bson.M {
	scoredCond := bson.M{"$cond": []any{
		bson.M{"$ne": []any{"$" + computedScore, nil}}, 1, 0,
	}}
	return append(windowStages(q), bson.M{"$facet": bson.M{
		"totals": []bson.M{
			{"$group": bson.M{
				"_id":      nil,
				"total":    bson.M{"$sum": 1},
				"scored":   bson.M{"$sum": scoredCond},
				"minScore": bson.M{"$min": "$" + computedScore},
				"maxScore": bson.M{"$max": "$" + computedScore},
			}},
		},
		"vectors": []bson.M{
			{"$group": bson.M{"_id": vectorExpr(), "count": bson.M{"$sum": 1}}},
		},
		"countries": []bson.M{
			{"$group": bson.M{"_id": countryExpr(), "count": bson.M{"$sum": 1}}},
			{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
			{"$limit": report.TopK},
		},
		"topIps": []bson.M{
			{"$group": bson.M{
				"_id":      convertExpr("$"+fieldSourceIP, "string", ""),
				"count":    bson.M{"$sum": 1},
				"lastSeen": bson.M{"$max": "$" + computedTimestamp},
			}},
			{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "lastSeen", Value: -1}, {Key: "_id", Value: 1}}},
			{"$limit": report.TopK},
		},
	}})
}

// rankPipeline selects the score at one zero-based rank of the ascending
// in-window score list. The _id tiebreak keeps equal-score orderings
// stable across calls.
func rankPipeline(q report.Query, rank int64) []bson.M {
	return append(windowStages(q),
		bson.M{"$match": bson.M{computedScore: bson.M{"$ne": nil}}},
		bson.M{"$sort": bson.D{{Key: computedScore, Value: 1}, {Key: "_id", Value: 1}}},
		bson.M{"$skip": rank},
		bson.M{"$limit": 1},
		bson.M{"$project": bson.M{"_id": 0, "score": "$" + computedScore}},
	)
}

// bucketPipeline counts scored events at or below each cutoff in one
// grouping pass.
func bucketPipeline(q report.Query, obviousLe, subtleLe float64) []bson.M {
	le := func(cutoff float64) bson.M {
		return bson.M{"$sum": bson.M{"$cond": []any{
			bson.M{"$lte": []any{"$" + computedScore, cutoff}}, 1, 0,
		}}}
	}
	return append(windowStages(q),
		bson.M{"$match": bson.M{computedScore: bson.M{"$ne": nil}}},
		bson.M{"$group": bson.M{
			"_id":     nil,
			"obvious": le(obviousLe),
			"subtle":  le(subtleLe),
		}},
	)
}

// convertExpr is a tolerant $convert: unconvertible and absent values
// both become the fallback.
func convertExpr(input any, to string, fallback any) bson.M {
	return bson.M{"$convert": bson.M{
		"input":   input,
		"to":      to,
		"onError": fallback,
		"onNull":  fallback,
	}}
}

// lowerTrim normalizes a loosely typed string field for matching.
func lowerTrim(input any) bson.M {
	return bson.M{"$toLower": bson.M{"$trim": bson.M{"input": convertExpr(input, "string", "")}}}
}

func upperTrim(input any) bson.M {
	return bson.M{"$toUpper": bson.M{"$trim": bson.M{"input": convertExpr(input, "string", "")}}}
}

// prefixedBy tests whether the evaluated string starts with the prefix.
func prefixedBy(expr any, prefix string) bson.M {
	return bson.M{"$eq": []any{bson.M{"$indexOfBytes": []any{expr, prefix}}, 0}}
}

// vectorExpr is the query-side mirror of classify.AttackVector: an
// explicit stored vector matches by prefix, otherwise the byte rule then
// the method rule applies.
func vectorExpr() bson.M {
	byteRule := bson.M{"$gte": []any{
		convertExpr("$"+fieldBytes, "double", 0.0),
		float64(classify.VolumetricBytes),
	}}
	methodRule := bson.M{"$in": []any{
		upperTrim("$" + fieldMethod),
		classify.ApplicationMethods(),
	}}
	return bson.M{"$let": bson.M{
		"vars": bson.M{"av": lowerTrim("$" + fieldVector)},
		"in": bson.M{"$switch": bson.M{
			"branches": []bson.M{
				{"case": prefixedBy("$$av", "vol"), "then": classify.VectorVolumetric},
				{"case": prefixedBy("$$av", "prot"), "then": classify.VectorProtocol},
				{"case": prefixedBy("$$av", "app"), "then": classify.VectorApplication},
				{"case": byteRule, "then": classify.VectorVolumetric},
				{"case": methodRule, "then": classify.VectorApplication},
			},
			"default": classify.VectorProtocol,
		}},
	}}
}

// countryExpr is the query-side mirror of classify.Country: a non-empty
// explicit origin wins, otherwise the first address octet selects from
// the fixed country list by absolute value modulo its length.
func countryExpr() bson.M {
	countries := classify.Countries()
	firstSegment := bson.M{"$arrayElemAt": []any{
		bson.M{"$split": []any{
			bson.M{"$trim": bson.M{"input": convertExpr("$"+fieldSourceIP, "string", "")}},
			".",
		}},
		0,
	}}
	derived := bson.M{"$let": bson.M{
		"vars": bson.M{"n": convertExpr(firstSegment, "int", nil)},
		"in": bson.M{"$cond": []any{
			bson.M{"$eq": []any{"$$n", nil}},
			countries[0],
			bson.M{"$arrayElemAt": []any{
				countries,
				bson.M{"$abs": bson.M{"$mod": []any{"$$n", len(countries)}}},
			}},
		}},
	}}
	return bson.M{"$let": bson.M{
		"vars": bson.M{"c": bson.M{"$trim": bson.M{"input": convertExpr("$"+fieldCountry, "string", "")}}},
		"in": bson.M{"$cond": []any{
			bson.M{"$eq": []any{"$$c", ""}},
			derived,
			"$$c",
		}},
	}}
}
