package app

import (
	"testing"

	"gostatcore/domain/analysis"

	"github.com/stretchr/testify/assert"
)

func TestFrequenciesSyntax(t *testing.T) {
	w := analysis.VariableData{Variable: numeric("w")}
	got := frequenciesSyntax(analysis.FrequenciesRequest{
		VariableData:       []analysis.VariableData{{Variable: numeric("a")}, {Variable: numeric("b")}},
		WeightVariableData: &w,
		Options: analysis.FrequenciesOptions{
			DisplayDescriptive: true,
			Statistics: &analysis.StatisticsOptions{
				Percentiles:     analysis.PercentileOptions{Quartiles: true, Enabled: true, Values: []float64{10, 90}},
				CentralTendency: analysis.CentralTendencyOptions{Median: true},
			},
		},
	})

	assert.Equal(t, "WEIGHT BY w.\n"+
		"FREQUENCIES VARIABLES=a b\n"+
		"  /FORMAT=NOTABLE\n"+
		"  /NTILES=4\n"+
		"  /PERCENTILES=10 90\n"+
		"  /STATISTICS=MEDIAN\n"+
		"  /ORDER=ANALYSIS.", got)
}

func TestChiSquareSyntax(t *testing.T) {
	lo, hi := 1.0, 5.0
	got := chiSquareSyntax(ChiSquareRequest{
		Variables: []analysis.VariableData{{Variable: numeric("x")}},
		Options: analysis.ChiSquareOptions{
			ExpectedRange:     analysis.ExpectedRange{UseSpecifiedRange: true, Lower: &lo, Upper: &hi},
			ExpectedValue:     analysis.ExpectedValue{Values: []float64{1, 2.5}},
			DisplayStatistics: analysis.DisplayStatistics{Quartiles: true},
		},
	})

	assert.Equal(t, "NPAR TESTS\n"+
		"  /CHISQUARE=x(1,5)\n"+
		"  /EXPECTED=1 2.5\n"+
		"  /STATISTICS QUARTILES\n"+
		"  /MISSING ANALYSIS.", got)
}

func TestRunsSyntax(t *testing.T) {
	custom := 10.0
	got := runsSyntax(RunsRequest{
		Variables: []analysis.VariableData{{Variable: numeric("x")}, {Variable: numeric("y")}},
		Options: analysis.RunsOptions{
			CutPoint:    analysis.CutPoints{Median: true, Custom: true},
			CustomValue: &custom,
		},
	})

	assert.Equal(t, "NPAR TESTS\n"+
		"  /RUNS(MEDIAN)=x y\n"+
		"  /RUNS(10)=x y\n"+
		"  /MISSING ANALYSIS.", got)
}
