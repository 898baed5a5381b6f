// Package format holds the display policies shared by every output table.
package format

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// StatsDecimalPlaces is the precision used by the Frequencies statistics table
const StatsDecimalPlaces = 2

const pValueFloor = 0.001

// FormatNumber renders value with exactly precision fractional digits,
// rounding exact halves away from zero. A nil value yields nil.
func FormatNumber(value *float64, precision int) *string {
	if value == nil {
		return nil
	}
	if precision < 0 {
		precision = 0
	}
	s := roundHalfUp(*value, precision)
	return &s
}

// roundHalfUp differs from strconv only when the binary value lies exactly
// halfway between two outputs, where strconv picks the even digit.
func roundHalfUp(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s
	}

	scaled := new(big.Rat).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)))
	q, rem := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(scaled.Denom()) != 0 {
		return s
	}

	digits := q.Add(q, big.NewInt(1)).String()
	if len(digits) <= precision {
		digits = strings.Repeat("0", precision-len(digits)+1) + digits
	}
	out := digits
	if precision > 0 {
		out = digits[:len(digits)-precision] + "." + digits[len(digits)-precision:]
	}
	if v < 0 {
		out = "-" + out
	}
	return out
}

// FormatPValue renders a significance level with three decimals, or "<.001"
// when the value is below 0.001.
func FormatPValue(value *float64) *string {
	if value == nil {
		return nil
	}
	if *value < pValueFloor {
		s := "<.001"
		return &s
	}
	return FormatNumber(value, 3)
}

// FormatDF returns integral degrees of freedom unchanged as a float64 and
// anything else as a three-decimal string. A nil value yields nil.
func FormatDF(value *float64) any {
	if value == nil {
		return nil
	}
	if !math.IsInf(*value, 0) && *value == math.Trunc(*value) {
		return *value
	}
	return *FormatNumber(value, 3)
}

// Cell converts a formatted pointer into a table cell, nil stays nil
func Cell(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Fixed is FormatNumber for a plain value
func Fixed(value float64, precision int) string {
	return *FormatNumber(&value, precision)
}

// Ptr returns a pointer to v
func Ptr(v float64) *float64 {
	return &v
}
