// Package compute implements the statistical kernels executed by computation
// units: descriptive statistics, frequency distributions, the Chi-Square
// goodness-of-fit test and the one-sample Runs Test.
package compute

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"gostatcore/domain/variable"
	"gostatcore/internal/format"
)

// toFloat interprets one raw cell as a number. Date variables additionally
// accept date strings, converted to SPSS seconds.
func toFloat(cell any, isDate bool) (float64, bool) {
	switch v := cell.(type) {
	case nil:
		return 0, false
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		f := float64(v)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, !math.IsNaN(f) && !math.IsInf(f, 0)
		}
		if isDate {
			return format.ParseDate(s)
		}
		return 0, false
	}
	return 0, false
}

// toText interprets one raw cell of a string variable
func toText(cell any) (string, bool) {
	switch v := cell.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

// numericColumn returns the valid values in data order and the missing count
func numericColumn(v variable.Variable, data []any) ([]float64, int) {
	isDate := variable.IsDateVariable(v)
	values := make([]float64, 0, len(data))
	missing := 0
	for _, cell := range data {
		f, ok := toFloat(cell, isDate)
		if !ok {
			missing++
			continue
		}
		values = append(values, f)
	}
	return values, missing
}

// valueLabel renders a category value the way frequency tables show it
func valueLabel(v variable.Variable, value float64) string {
	if variable.IsDateVariable(v) {
		return format.SPSSSecondsToDate(value)
	}
	if v.Decimals > 0 {
		return format.Fixed(value, v.Decimals)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
