package compute

import (
	"math"
	"sort"
)

type observation struct {
	value  float64
	weight float64
}

// observations pairs values with their weights sorted by value. nil weights
// count each value once; non-positive weights drop the value.
func observations(values, weights []float64) []observation {
	out := make([]observation, 0, len(values))
	for i, v := range values {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w > 0 {
			out = append(out, observation{value: v, weight: w})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].value < out[j].value })
	return out
}

// percentile implements the weighted average at X(n+1)p definition
// (HAVERAGE), the default of SPSS FREQUENCIES. sorted must be ascending.
func percentile(sorted []float64, level float64) (float64, bool) {
	return weightedPercentile(observations(sorted, nil), level)
}

// weightedPercentile is HAVERAGE over cumulative weights, where a case of
// weight w occupies w consecutive positions. obs must be sorted by value.
func weightedPercentile(obs []observation, level float64) (float64, bool) {
	if len(obs) == 0 || level <= 0 || level >= 100 {
		return 0, false
	}
	total := 0.0
	for _, o := range obs {
		total += o.weight
	}

	w := level / 100 * (total + 1)
	k := math.Floor(w)
	f := w - k
	switch {
	case k < 1:
		return obs[0].value, true
	case k >= total:
		return obs[len(obs)-1].value, true
	}
	return (1-f)*valueAt(obs, k) + f*valueAt(obs, k+1), true
}

// valueAt returns the value occupying cumulative position pos (1-based)
func valueAt(obs []observation, pos float64) float64 {
	cum := 0.0
	for _, o := range obs {
		cum += o.weight
		if cum >= pos-1e-9 {
			return o.value
		}
	}
	return obs[len(obs)-1].value
}
