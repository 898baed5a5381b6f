package analysis

import (
	"math"
	"sort"
)

// PercentileOptions selects which percentile levels a Frequencies run reports
type PercentileOptions struct {
	Quartiles  bool      `json:"quartiles"`
	CutPoints  bool      `json:"cutPoints"`
	CutPointsN int       `json:"cutPointsN"`
	Enabled    bool      `json:"enablePercentiles"`
	Values     []float64 `json:"percentileValues"`
}

// CentralTendencyOptions toggles location statistics
type CentralTendencyOptions struct {
	Mean   bool `json:"mean"`
	Median bool `json:"median"`
	Mode   bool `json:"mode"`
	Sum    bool `json:"sum"`
}

// DispersionOptions toggles spread statistics
type DispersionOptions struct {
	StdDev   bool `json:"stddev"`
	Variance bool `json:"variance"`
	Range    bool `json:"range"`
	Minimum  bool `json:"minimum"`
	Maximum  bool `json:"maximum"`
	SEMean   bool `json:"standardError"`
}

// DistributionOptions toggles shape statistics
type DistributionOptions struct {
	Skewness bool `json:"skewness"`
	Kurtosis bool `json:"kurtosis"`
}

// StatisticsOptions is rebuilt from UI state for every request and never
// mutated afterwards.
type StatisticsOptions struct {
	Percentiles     PercentileOptions      `json:"percentiles"`
	CentralTendency CentralTendencyOptions `json:"centralTendency"`
	Dispersion      DispersionOptions      `json:"dispersion"`
	Distribution    DistributionOptions    `json:"distribution"`
}

// Any reports whether at least one statistic is requested
func (o StatisticsOptions) Any() bool {
	ct, d, dist := o.CentralTendency, o.Dispersion, o.Distribution
	return ct.Mean || ct.Median || ct.Mode || ct.Sum ||
		d.StdDev || d.Variance || d.Range || d.Minimum || d.Maximum || d.SEMean ||
		dist.Skewness || dist.Kurtosis ||
		len(o.PercentileLevels()) > 0
}

// PercentileLevels expands quartiles, equal-group cut points and explicit
// values into a sorted, de-duplicated list of levels in (0, 100).
func (o StatisticsOptions) PercentileLevels() []float64 {
	var levels []float64
	p := o.Percentiles
	if p.Quartiles {
		levels = append(levels, 25, 50, 75)
	}
	if p.CutPoints && p.CutPointsN > 1 {
		step := 100 / float64(p.CutPointsN)
		for i := 1; i < p.CutPointsN; i++ {
			levels = append(levels, math.Round(step*float64(i)*1e6)/1e6)
		}
	}
	if p.Enabled {
		levels = append(levels, p.Values...)
	}
	return NormalizeLevels(levels)
}

// NormalizeLevels sorts levels ascending and drops duplicates and values
// outside the open interval (0, 100).
func NormalizeLevels(levels []float64) []float64 {
	seen := make(map[float64]bool, len(levels))
	out := make([]float64, 0, len(levels))
	for _, l := range levels {
		if l <= 0 || l >= 100 || math.IsNaN(l) || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Float64s(out)
	return out
}

// ChartType selects the chart produced alongside frequency tables
type ChartType string

const (
	ChartNone      ChartType = "none"
	ChartBar       ChartType = "barCharts"
	ChartPie       ChartType = "pieCharts"
	ChartHistogram ChartType = "histograms"
)

// ChartValues selects what the chart axis counts
type ChartValues string

const (
	ChartFrequencies ChartValues = "frequencies"
	ChartPercentages ChartValues = "percentages"
)

// ChartOptions configures chart output for Frequencies
type ChartOptions struct {
	Type            ChartType   `json:"chartType"`
	Values          ChartValues `json:"chartValues"`
	ShowNormalCurve bool        `json:"showNormalCurveOnHistogram"`
}

// Enabled reports whether any chart is requested
func (c ChartOptions) Enabled() bool {
	return c.Type != "" && c.Type != ChartNone
}

// FrequenciesOptions is the option bundle sent with a Frequencies request
type FrequenciesOptions struct {
	DisplayFrequency   bool               `json:"displayFrequency"`
	DisplayDescriptive bool               `json:"displayDescriptive"`
	Statistics         *StatisticsOptions `json:"statisticsOptions"`
	Charts             *ChartOptions      `json:"chartOptions"`
}

// DisplayStatistics selects the descriptive table for Chi-Square and Runs
type DisplayStatistics struct {
	Descriptive bool `json:"descriptive"`
	Quartiles   bool `json:"quartiles"`
}

// Any reports whether any descriptive output is requested
func (d DisplayStatistics) Any() bool {
	return d.Descriptive || d.Quartiles
}

// ExpectedRange defines the category universe of a Chi-Square test
type ExpectedRange struct {
	GetFromData       bool     `json:"getFromData"`
	UseSpecifiedRange bool     `json:"useSpecifiedRange"`
	Lower             *float64 `json:"lowerValue"`
	Upper             *float64 `json:"upperValue"`
}

// MaxRangeCategories bounds the number of integer categories a specified
// range may span
const MaxRangeCategories = 1000

// RangeCategories returns the number of integer categories between lower and
// upper inclusive. ok is false when the count is not finite or exceeds
// MaxRangeCategories.
func RangeCategories(lower, upper float64) (n int, ok bool) {
	width := math.Floor(upper) - math.Ceil(lower) + 1
	if math.IsNaN(width) || math.IsInf(width, 0) || width > MaxRangeCategories {
		return 0, false
	}
	if width < 0 {
		return 0, true
	}
	return int(width), true
}

// TooWide reports whether both bounds are given and span more than
// MaxRangeCategories categories
func (r ExpectedRange) TooWide() bool {
	if !r.UseSpecifiedRange || r.Lower == nil || r.Upper == nil {
		return false
	}
	_, ok := RangeCategories(*r.Lower, *r.Upper)
	return !ok
}

// ExpectedValue defines the expected proportions of a Chi-Square test
type ExpectedValue struct {
	AllCategoriesEqual bool      `json:"allCategoriesEqual"`
	Values             []float64 `json:"expectedValueList"`
}

// ChiSquareOptions is the option bundle for one Chi-Square variable request
type ChiSquareOptions struct {
	ExpectedRange     ExpectedRange     `json:"expectedRange"`
	ExpectedValue     ExpectedValue     `json:"expectedValue"`
	DisplayStatistics DisplayStatistics `json:"displayStatistics"`
}

// CutPointKind names a Runs Test cut point method
type CutPointKind string

const (
	CutMedian CutPointKind = "median"
	CutMean   CutPointKind = "mean"
	CutMode   CutPointKind = "mode"
	CutCustom CutPointKind = "custom"
)

// CutPointKinds lists the cut point methods in table order
var CutPointKinds = []CutPointKind{CutMedian, CutMean, CutMode, CutCustom}

// CutPoints selects Runs Test cut point methods
type CutPoints struct {
	Median bool `json:"median"`
	Mode   bool `json:"mode"`
	Mean   bool `json:"mean"`
	Custom bool `json:"custom"`
}

// Selected returns the chosen methods in table order
func (c CutPoints) Selected() []CutPointKind {
	var out []CutPointKind
	if c.Median {
		out = append(out, CutMedian)
	}
	if c.Mean {
		out = append(out, CutMean)
	}
	if c.Mode {
		out = append(out, CutMode)
	}
	if c.Custom {
		out = append(out, CutCustom)
	}
	return out
}

// RunsOptions is the option bundle for one Runs Test variable request
type RunsOptions struct {
	CutPoint          CutPoints         `json:"cutPoint"`
	CustomValue       *float64          `json:"customValue"`
	DisplayStatistics DisplayStatistics `json:"displayStatistics"`
}
