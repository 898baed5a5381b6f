package format

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3.14", *FormatNumber(Ptr(3.14159), 2))
	assert.Equal(t, "2", *FormatNumber(Ptr(2), 0))
	assert.Equal(t, "-10.0", *FormatNumber(Ptr(-10), 1))
	assert.Equal(t, "0.500", *FormatNumber(Ptr(0.5), 3))
}

func TestFormatNumber_HalvesRoundUp(t *testing.T) {
	cases := []struct {
		value     float64
		precision int
		want      string
	}{
		{2.5, 0, "3"},
		{0.125, 2, "0.13"},
		{6.25, 1, "6.3"},
		{12.25, 1, "12.3"},
		{0.5, 0, "1"},
		{0.05, 1, "0.1"},
		{-2.5, 0, "-3"},
		{-0.125, 2, "-0.13"},
		// 1.005 is stored just below the half
		{1.005, 2, "1.00"},
		{6.24, 1, "6.2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, *FormatNumber(Ptr(tc.value), tc.precision), "value %v precision %d", tc.value, tc.precision)
	}
}

func TestFormatNumber_Idempotent(t *testing.T) {
	values := []float64{0, 1.23456, -98.7654321, 1e6 + 0.125, 0.0005}
	for _, v := range values {
		for p := 0; p <= 6; p++ {
			first := *FormatNumber(Ptr(v), p)
			parsed, err := strconv.ParseFloat(first, 64)
			require.NoError(t, err)
			assert.Equal(t, first, *FormatNumber(&parsed, p), "value %v precision %d", v, p)
		}
	}
}

func TestNullPropagation(t *testing.T) {
	for p := 0; p < 5; p++ {
		assert.Nil(t, FormatNumber(nil, p))
	}
	assert.Nil(t, FormatPValue(nil))
	assert.Nil(t, FormatDF(nil))
	assert.Nil(t, Cell(nil))
}

func TestFormatPValue_Boundary(t *testing.T) {
	assert.Equal(t, "<.001", *FormatPValue(Ptr(0.000999)))
	assert.Equal(t, "0.001", *FormatPValue(Ptr(0.001)))
	assert.Equal(t, "0.050", *FormatPValue(Ptr(0.05)))
	assert.Equal(t, "<.001", *FormatPValue(Ptr(0)))
}

func TestFormatDF(t *testing.T) {
	assert.Equal(t, float64(5), FormatDF(Ptr(5)))
	assert.Equal(t, "5.500", FormatDF(Ptr(5.5)))
}
