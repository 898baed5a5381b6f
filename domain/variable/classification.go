package variable

import "strings"

// StatKey names a statistic that may appear in an output table
type StatKey string

const (
	StatN           StatKey = "N"
	StatMean        StatKey = "Mean"
	StatSEMean      StatKey = "SEMean"
	StatMedian      StatKey = "Median"
	StatMode        StatKey = "Mode"
	StatStdDev      StatKey = "StdDev"
	StatVariance    StatKey = "Variance"
	StatSkewness    StatKey = "Skewness"
	StatSESkewness  StatKey = "SESkewness"
	StatKurtosis    StatKey = "Kurtosis"
	StatSEKurtosis  StatKey = "SEKurtosis"
	StatRange       StatKey = "Range"
	StatMinimum     StatKey = "Minimum"
	StatMaximum     StatKey = "Maximum"
	StatSum         StatKey = "Sum"
	StatPercentiles StatKey = "Percentiles"
)

var dateTypes = map[Type]bool{
	TypeDate:     true,
	TypeADate:    true,
	TypeEDate:    true,
	TypeSDate:    true,
	TypeJDate:    true,
	TypeQYR:      true,
	TypeMOYR:     true,
	TypeWKYR:     true,
	TypeDateTime: true,
	TypeTime:     true,
	TypeDTime:    true,
	TypeWkDay:    true,
	TypeMonth:    true,
}

// statistics that need at least an ordinal scale
var orderedStats = map[StatKey]bool{
	StatMedian:      true,
	StatRange:       true,
	StatMinimum:     true,
	StatMaximum:     true,
	StatPercentiles: true,
	StatMean:        true,
	StatSEMean:      true,
	StatStdDev:      true,
	StatVariance:    true,
	StatSkewness:    true,
	StatSESkewness:  true,
	StatKurtosis:    true,
	StatSEKurtosis:  true,
}

// moment-based statistics that are shown for ordinal variables with a caution
var cautionStats = map[StatKey]bool{
	StatMean:       true,
	StatSEMean:     true,
	StatStdDev:     true,
	StatVariance:   true,
	StatSkewness:   true,
	StatSESkewness: true,
	StatKurtosis:   true,
	StatSEKurtosis: true,
}

// IsDateVariable reports whether the variable's type is one of the date-like types
func IsDateVariable(v Variable) bool {
	return dateTypes[Type(strings.ToUpper(string(v.Type)))]
}

// EffectiveMeasure resolves an unset or unknown measure to a type-appropriate
// default: nominal for strings, scale for numeric and date variables.
func EffectiveMeasure(v Variable) Measure {
	switch Measure(strings.ToLower(string(v.Measure))) {
	case MeasureNominal:
		return MeasureNominal
	case MeasureOrdinal:
		return MeasureOrdinal
	case MeasureScale:
		return MeasureScale
	}
	if v.IsString() {
		return MeasureNominal
	}
	return MeasureScale
}

// AllowsStat reports whether statistic key may be shown for the variable.
// Unrecognized keys are allowed.
func AllowsStat(v Variable, key StatKey) bool {
	measure := EffectiveMeasure(v)
	switch {
	case key == StatMode || key == StatN:
		return true
	case key == StatSum:
		return measure == MeasureScale
	case orderedStats[key]:
		return measure == MeasureOrdinal || measure == MeasureScale
	}
	return true
}

// IsCautionStat reports whether key belongs to the moment statistics that
// carry an interpretation caution for ordinal variables.
func IsCautionStat(key StatKey) bool {
	return cautionStats[key]
}
