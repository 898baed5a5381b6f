package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileLevels(t *testing.T) {
	opts := StatisticsOptions{Percentiles: PercentileOptions{
		Quartiles:  true,
		CutPoints:  true,
		CutPointsN: 4,
		Enabled:    true,
		Values:     []float64{90, 10, 50, 0, 100},
	}}

	assert.Equal(t, []float64{10, 25, 50, 75, 90}, opts.PercentileLevels())
}

func TestPercentileLevels_Empty(t *testing.T) {
	assert.Empty(t, StatisticsOptions{}.PercentileLevels())
	assert.False(t, StatisticsOptions{}.Any())
}

func TestCutPointsSelected(t *testing.T) {
	c := CutPoints{Custom: true, Median: true}
	assert.Equal(t, []CutPointKind{CutMedian, CutCustom}, c.Selected())
}

func TestRangeCategories(t *testing.T) {
	n, ok := RangeCategories(0.5, 4)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = RangeCategories(1, MaxRangeCategories)
	assert.True(t, ok)
	assert.Equal(t, MaxRangeCategories, n)

	_, ok = RangeCategories(0, MaxRangeCategories)
	assert.False(t, ok)
	_, ok = RangeCategories(0, math.Inf(1))
	assert.False(t, ok)

	lower, upper := 0.0, 1e13
	assert.True(t, ExpectedRange{UseSpecifiedRange: true, Lower: &lower, Upper: &upper}.TooWide())
	assert.False(t, ExpectedRange{UseSpecifiedRange: true, Lower: &lower}.TooWide())
}
