package analysis

import (
	"strconv"

	"gostatcore/domain/variable"
)

// DescriptiveStatistics holds the Frequencies statistics for one variable.
// Nil pointers mark statistics that were not requested or not computable.
type DescriptiveStatistics struct {
	N           float64            `json:"N"`
	Missing     float64            `json:"Missing"`
	Mean        *float64           `json:"Mean,omitempty"`
	Median      *float64           `json:"Median,omitempty"`
	Mode        []float64          `json:"Mode,omitempty"`
	ModeText    []string           `json:"ModeText,omitempty"`
	StdDev      *float64           `json:"StdDev,omitempty"`
	Variance    *float64           `json:"Variance,omitempty"`
	Range       *float64           `json:"Range,omitempty"`
	Minimum     *float64           `json:"Minimum,omitempty"`
	Maximum     *float64           `json:"Maximum,omitempty"`
	Sum         *float64           `json:"Sum,omitempty"`
	SEMean      *float64           `json:"SEMean,omitempty"`
	Skewness    *float64           `json:"Skewness,omitempty"`
	SESkewness  *float64           `json:"SESkewness,omitempty"`
	Kurtosis    *float64           `json:"Kurtosis,omitempty"`
	SEKurtosis  *float64           `json:"SEKurtosis,omitempty"`
	Percentiles map[string]float64 `json:"Percentiles,omitempty"`
}

// HasMode reports whether a mode was computed
func (s DescriptiveStatistics) HasMode() bool {
	return len(s.Mode) > 0 || len(s.ModeText) > 0
}

// MultipleModes reports whether more than one mode exists
func (s DescriptiveStatistics) MultipleModes() bool {
	return len(s.Mode) > 1 || len(s.ModeText) > 1
}

// Percentile returns the value stored for level
func (s DescriptiveStatistics) Percentile(level float64) (float64, bool) {
	v, ok := s.Percentiles[PercentileKey(level)]
	return v, ok
}

// PercentileKey is the map key used for a percentile level
func PercentileKey(level float64) string {
	return strconv.FormatFloat(level, 'f', -1, 64)
}

// FrequencyRow is one observed category of a frequency table
type FrequencyRow struct {
	Label             string   `json:"label"`
	Value             *float64 `json:"value,omitempty"`
	Frequency         float64  `json:"frequency"`
	Percent           float64  `json:"percent"`
	ValidPercent      float64  `json:"validPercent"`
	CumulativePercent float64  `json:"cumulativePercent"`
}

// FrequencySummary holds the valid/missing/total counts of a frequency table
type FrequencySummary struct {
	Valid   float64 `json:"valid"`
	Missing float64 `json:"missing"`
	Total   float64 `json:"total"`
}

// FrequencyTable is the raw frequency distribution of one variable
type FrequencyTable struct {
	Title   string           `json:"title"`
	Rows    []FrequencyRow   `json:"rows"`
	Summary FrequencySummary `json:"summary"`
}

// FrequenciesResults is the batched result of a Frequencies computation,
// keyed by variable name.
type FrequenciesResults struct {
	Statistics      map[string]DescriptiveStatistics `json:"statistics"`
	FrequencyTables map[string]FrequencyTable        `json:"frequencyTables"`
}

// DescriptiveSummary backs the Descriptive Statistics table of Chi-Square and Runs
type DescriptiveSummary struct {
	N      int      `json:"N"`
	Mean   *float64 `json:"Mean,omitempty"`
	StdDev *float64 `json:"StdDev,omitempty"`
	Min    *float64 `json:"Min,omitempty"`
	Max    *float64 `json:"Max,omitempty"`
	P25    *float64 `json:"Percentile25,omitempty"`
	P50    *float64 `json:"Percentile50,omitempty"`
	P75    *float64 `json:"Percentile75,omitempty"`
}

// ChiSquareCategory is one category of a Chi-Square frequencies table
type ChiSquareCategory struct {
	Category  string   `json:"category"`
	Value     *float64 `json:"value,omitempty"`
	ObservedN float64  `json:"observedN"`
	ExpectedN float64  `json:"expectedN"`
	Residual  float64  `json:"residual"`
}

// ChiSquareResult is the goodness-of-fit outcome for one variable
type ChiSquareResult struct {
	Categories     []ChiSquareCategory `json:"frequencies"`
	TotalObserved  float64             `json:"totalObserved"`
	ChiSquare      *float64            `json:"ChiSquare,omitempty"`
	DF             *float64            `json:"DF,omitempty"`
	PValue         *float64            `json:"PValue,omitempty"`
	CellsBelowFive int                 `json:"cellsBelowFive"`
	MinExpected    float64             `json:"minExpected"`
}

// RunsResult is the Runs Test outcome for one cut point
type RunsResult struct {
	TestValue  *float64 `json:"TestValue,omitempty"`
	CasesBelow int      `json:"CasesBelow"`
	CasesAbove int      `json:"CasesAbove"`
	Total      int      `json:"Total"`
	Runs       int      `json:"Runs"`
	Z          *float64 `json:"Z,omitempty"`
	PValue     *float64 `json:"PValue,omitempty"`
}

// VariableResults carries the per-variable output of Chi-Square and Runs units
type VariableResults struct {
	Descriptive *DescriptiveSummary          `json:"descriptiveStatistics,omitempty"`
	ChiSquare   *ChiSquareResult             `json:"chiSquare,omitempty"`
	Runs        map[CutPointKind]*RunsResult `json:"runs,omitempty"`
	Notes       []string                     `json:"notes,omitempty"`
}

// VariableStatistics pairs a variable with its Frequencies statistics
type VariableStatistics struct {
	Variable   variable.Variable
	Statistics DescriptiveStatistics
	// Levels are the requested percentile levels. Each gets a row even when
	// no variable could compute it.
	Levels []float64
}

// VariableOutcome pairs a variable with its Chi-Square or Runs results
type VariableOutcome struct {
	Variable variable.Variable
	Results  VariableResults
}
