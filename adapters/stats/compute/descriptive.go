package compute

import (
	"math"

	"gostatcore/domain/analysis"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// Describe computes the requested Frequencies statistics for one numeric
// column. values need not be sorted.
func Describe(values []float64, missing int, opts analysis.StatisticsOptions) analysis.DescriptiveStatistics {
	return DescribeWeighted(values, nil, float64(missing), opts)
}

// DescribeWeighted is Describe with case weights. N is the sum of the
// weights and every statistic counts a case weight times. nil weights count
// each case once; cases with a weight of zero or less are ignored.
func DescribeWeighted(values, weights []float64, missing float64, opts analysis.StatisticsOptions) analysis.DescriptiveStatistics {
	obs := observations(values, weights)
	xs, ws := make([]float64, len(obs)), make([]float64, len(obs))
	total := 0.0
	for i, o := range obs {
		xs[i], ws[i] = o.value, o.weight
		total += o.weight
	}

	out := analysis.DescriptiveStatistics{N: total, Missing: missing}
	if len(obs) == 0 {
		return out
	}
	ct, disp, dist := opts.CentralTendency, opts.Dispersion, opts.Distribution

	if ct.Mean {
		out.Mean = finite(gstat.Mean(xs, ws))
	}
	if ct.Median {
		if median, ok := weightedPercentile(obs, 50); ok {
			out.Median = finite(median)
		}
	}
	if ct.Mode {
		out.Mode = weightedModes(obs)
	}
	if ct.Sum {
		out.Sum = finite(floats.Dot(xs, ws))
	}

	if total > 1 {
		variance := gstat.Variance(xs, ws)
		sd := math.Sqrt(variance)
		if disp.StdDev {
			out.StdDev = finite(sd)
		}
		if disp.Variance {
			out.Variance = finite(variance)
		}
		if disp.SEMean {
			out.SEMean = finite(sd / math.Sqrt(total))
		}
	}

	lo, hi := xs[0], xs[len(xs)-1]
	if disp.Minimum {
		out.Minimum = finite(lo)
	}
	if disp.Maximum {
		out.Maximum = finite(hi)
	}
	if disp.Range {
		out.Range = finite(hi - lo)
	}

	if dist.Skewness && total > 2 {
		out.Skewness = finite(gstat.Skew(xs, ws))
		out.SESkewness = finite(seSkewness(total))
	}
	if dist.Kurtosis && total > 3 {
		out.Kurtosis = finite(gstat.ExKurtosis(xs, ws))
		out.SEKurtosis = finite(seKurtosis(total))
	}

	if levels := opts.PercentileLevels(); len(levels) > 0 {
		out.Percentiles = make(map[string]float64, len(levels))
		for _, level := range levels {
			if p, ok := weightedPercentile(obs, level); ok {
				out.Percentiles[analysis.PercentileKey(level)] = p
			}
		}
	}

	return out
}

// Summarize computes the descriptive block shown by Chi-Square and Runs
func Summarize(values []float64) analysis.DescriptiveSummary {
	out := analysis.DescriptiveSummary{N: len(values)}
	if len(values) == 0 {
		return out
	}
	sorted := sortedCopy(values)

	mean, _ := stats.Mean(sorted)
	out.Mean = finite(mean)
	if len(sorted) > 1 {
		sd, _ := stats.StandardDeviationSample(sorted)
		out.StdDev = finite(sd)
	}
	out.Min = finite(sorted[0])
	out.Max = finite(sorted[len(sorted)-1])

	if p, ok := percentile(sorted, 25); ok {
		out.P25 = finite(p)
	}
	if p, ok := percentile(sorted, 50); ok {
		out.P50 = finite(p)
	}
	if p, ok := percentile(sorted, 75); ok {
		out.P75 = finite(p)
	}
	return out
}

// modes returns every most-frequent value in ascending order. sorted must be
// ascending.
func modes(sorted []float64) []float64 {
	return weightedModes(observations(sorted, nil))
}

// weightedModes returns every value with the largest total weight, ascending.
// obs must be sorted by value.
func weightedModes(obs []observation) []float64 {
	var out []float64
	best, run := 0.0, 0.0
	for i, o := range obs {
		if i > 0 && o.value == obs[i-1].value {
			run += o.weight
		} else {
			run = o.weight
		}
		if i < len(obs)-1 && obs[i+1].value == o.value {
			continue
		}
		switch {
		case run > best:
			best = run
			out = append(out[:0], o.value)
		case run == best:
			out = append(out, o.value)
		}
	}
	return out
}

func seSkewness(n float64) float64 {
	return math.Sqrt(6 * n * (n - 1) / ((n - 2) * (n + 1) * (n + 3)))
}

func seKurtosis(n float64) float64 {
	ses := seSkewness(n)
	return math.Sqrt(4 * (n*n - 1) * ses * ses / ((n - 3) * (n + 5)))
}
