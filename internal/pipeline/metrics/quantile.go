package metrics

import (
	"math"
	"sort"

	"github.com/courtline/courtline/internal/domain/analytics"
)

// AssignTiers buckets values into the five quantile tiers, lowest fifth
// first. Boundaries are computed over the given slice, so tiering is relative
// to the snapshot it came from. The result is positional: out[i] is the tier
// of values[i].
func AssignTiers(values []float64) []analytics.Tier {
	out := make([]analytics.Tier, len(values))
	if len(values) == 0 {
		return out
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	bounds := make([]float64, len(analytics.Tiers)-1)
	for i := range bounds {
		bounds[i] = interpolatedQuantile(sorted, float64(i+1)/float64(len(analytics.Tiers)))
	}

	for i, value := range values {
		tier := analytics.Tiers[len(analytics.Tiers)-1]
		for j, bound := range bounds {
			if value <= bound {
				tier = analytics.Tiers[j]
				break
			}
		}
		out[i] = tier
	}
	return out
}

func interpolatedQuantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
