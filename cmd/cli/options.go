package main

import (
	"fmt"
	"strings"

	"gostatcore/adapters/excel"
	"gostatcore/domain/analysis"

	"github.com/spf13/cobra"
)

type frequenciesFlags struct {
	weight      string
	noTable     bool
	stats       []string
	quartiles   bool
	ntiles      int
	percentiles []float64
	chart       string
	chartValues string
	normal      bool
}

func (f *frequenciesFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.weight, "weight", "", "Weight cases by this variable")
	fl.BoolVar(&f.noTable, "no-table", false, "Suppress frequency tables")
	fl.StringSliceVar(&f.stats, "stats", nil, "Statistics: mean,median,mode,sum,stddev,variance,range,min,max,semean,skewness,kurtosis or all")
	fl.BoolVar(&f.quartiles, "quartiles", false, "Report quartiles")
	fl.IntVar(&f.ntiles, "ntiles", 0, "Cut points for N equal groups")
	fl.Float64SliceVar(&f.percentiles, "percentiles", nil, "Explicit percentile levels")
	fl.StringVar(&f.chart, "chart", "none", "Chart: none, bar, pie or histogram")
	fl.StringVar(&f.chartValues, "chart-values", "frequencies", "Chart values: frequencies or percentages")
	fl.BoolVar(&f.normal, "normal", false, "Draw a normal curve on histograms")
}

var statSetters = map[string]func(*analysis.StatisticsOptions){
	"mean":     func(o *analysis.StatisticsOptions) { o.CentralTendency.Mean = true },
	"median":   func(o *analysis.StatisticsOptions) { o.CentralTendency.Median = true },
	"mode":     func(o *analysis.StatisticsOptions) { o.CentralTendency.Mode = true },
	"sum":      func(o *analysis.StatisticsOptions) { o.CentralTendency.Sum = true },
	"stddev":   func(o *analysis.StatisticsOptions) { o.Dispersion.StdDev = true },
	"variance": func(o *analysis.StatisticsOptions) { o.Dispersion.Variance = true },
	"range":    func(o *analysis.StatisticsOptions) { o.Dispersion.Range = true },
	"min":      func(o *analysis.StatisticsOptions) { o.Dispersion.Minimum = true },
	"max":      func(o *analysis.StatisticsOptions) { o.Dispersion.Maximum = true },
	"semean":   func(o *analysis.StatisticsOptions) { o.Dispersion.SEMean = true },
	"skewness": func(o *analysis.StatisticsOptions) { o.Distribution.Skewness = true },
	"kurtosis": func(o *analysis.StatisticsOptions) { o.Distribution.Kurtosis = true },
}

var chartTypes = map[string]analysis.ChartType{
	"none":      analysis.ChartNone,
	"bar":       analysis.ChartBar,
	"pie":       analysis.ChartPie,
	"histogram": analysis.ChartHistogram,
}

func (f *frequenciesFlags) statistics() (*analysis.StatisticsOptions, error) {
	opts := &analysis.StatisticsOptions{
		Percentiles: analysis.PercentileOptions{
			Quartiles:  f.quartiles,
			CutPoints:  f.ntiles > 1,
			CutPointsN: f.ntiles,
			Enabled:    len(f.percentiles) > 0,
			Values:     f.percentiles,
		},
	}
	for _, name := range f.stats {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "all" {
			for _, set := range statSetters {
				set(opts)
			}
			continue
		}
		set, ok := statSetters[name]
		if !ok {
			return nil, fmt.Errorf("unknown statistic %q", name)
		}
		set(opts)
	}
	return opts, nil
}

func (f *frequenciesFlags) request(vars []analysis.VariableData, ds *excel.Dataset) (analysis.FrequenciesRequest, error) {
	stats, err := f.statistics()
	if err != nil {
		return analysis.FrequenciesRequest{}, err
	}
	weight, err := weightVariable(ds, f.weight)
	if err != nil {
		return analysis.FrequenciesRequest{}, err
	}
	chart, ok := chartTypes[strings.ToLower(f.chart)]
	if !ok {
		return analysis.FrequenciesRequest{}, fmt.Errorf("unknown chart type %q", f.chart)
	}
	values := analysis.ChartFrequencies
	if strings.HasPrefix(strings.ToLower(f.chartValues), "percent") {
		values = analysis.ChartPercentages
	}

	return analysis.FrequenciesRequest{
		VariableData:       vars,
		WeightVariableData: weight,
		Options: analysis.FrequenciesOptions{
			DisplayFrequency:   !f.noTable,
			DisplayDescriptive: stats.Any(),
			Statistics:         stats,
			Charts:             &analysis.ChartOptions{Type: chart, Values: values, ShowNormalCurve: f.normal},
		},
	}, nil
}

type displayFlags struct {
	descriptives bool
	quartiles    bool
}

func (d *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&d.descriptives, "descriptives", false, "Show N, mean, standard deviation, minimum and maximum")
	cmd.Flags().BoolVar(&d.quartiles, "quartiles", false, "Show quartiles")
}

func (d *displayFlags) options() analysis.DisplayStatistics {
	return analysis.DisplayStatistics{Descriptive: d.descriptives, Quartiles: d.quartiles}
}

type chiSquareFlags struct {
	display  displayFlags
	lower    float64
	upper    float64
	expected []float64
}

func (f *chiSquareFlags) register(cmd *cobra.Command) {
	f.display.register(cmd)
	cmd.Flags().Float64Var(&f.lower, "lower", 0, "Lower bound of the expected range")
	cmd.Flags().Float64Var(&f.upper, "upper", 0, "Upper bound of the expected range")
	cmd.Flags().Float64SliceVar(&f.expected, "expected", nil, "Expected proportions, one per category")
}

func (f *chiSquareFlags) options(cmd *cobra.Command) analysis.ChiSquareOptions {
	opts := analysis.ChiSquareOptions{
		ExpectedRange:     analysis.ExpectedRange{GetFromData: true},
		ExpectedValue:     analysis.ExpectedValue{AllCategoriesEqual: len(f.expected) == 0, Values: f.expected},
		DisplayStatistics: f.display.options(),
	}
	lowerSet, upperSet := cmd.Flags().Changed("lower"), cmd.Flags().Changed("upper")
	if lowerSet || upperSet {
		opts.ExpectedRange = analysis.ExpectedRange{UseSpecifiedRange: true}
		if lowerSet {
			lower := f.lower
			opts.ExpectedRange.Lower = &lower
		}
		if upperSet {
			upper := f.upper
			opts.ExpectedRange.Upper = &upper
		}
	}
	return opts
}

type runsFlags struct {
	display displayFlags
	cuts    []string
	custom  float64
}

func (f *runsFlags) register(cmd *cobra.Command) {
	f.display.register(cmd)
	cmd.Flags().StringSliceVar(&f.cuts, "cut", []string{"median"}, "Cut points: median, mean, mode, custom")
	cmd.Flags().Float64Var(&f.custom, "custom", 0, "Value of the custom cut point")
}

func (f *runsFlags) options(cmd *cobra.Command) (analysis.RunsOptions, error) {
	opts := analysis.RunsOptions{DisplayStatistics: f.display.options()}
	for _, c := range f.cuts {
		switch analysis.CutPointKind(strings.ToLower(strings.TrimSpace(c))) {
		case analysis.CutMedian:
			opts.CutPoint.Median = true
		case analysis.CutMean:
			opts.CutPoint.Mean = true
		case analysis.CutMode:
			opts.CutPoint.Mode = true
		case analysis.CutCustom:
			opts.CutPoint.Custom = true
		default:
			return opts, fmt.Errorf("unknown cut point %q", c)
		}
	}
	if cmd.Flags().Changed("custom") {
		custom := f.custom
		opts.CustomValue = &custom
	}
	return opts, nil
}
