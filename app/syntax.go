package app

import (
	"strconv"
	"strings"

	"gostatcore/domain/analysis"
)

// The log entry of a run is the equivalent command syntax

func variableNames(vars []analysis.VariableData) string {
	names := make([]string, len(vars))
	for i, vd := range vars {
		names[i] = vd.Variable.Name
	}
	return strings.Join(names, " ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func frequenciesSyntax(req analysis.FrequenciesRequest) string {
	var b strings.Builder
	if w := req.WeightVariableData; w != nil {
		b.WriteString("WEIGHT BY " + w.Variable.Name + ".\n")
	}
	b.WriteString("FREQUENCIES VARIABLES=" + variableNames(req.VariableData))

	opts := req.Options
	if !opts.DisplayFrequency {
		b.WriteString("\n  /FORMAT=NOTABLE")
	}
	if s := opts.Statistics; opts.DisplayDescriptive && s != nil {
		p := s.Percentiles
		if p.Quartiles {
			b.WriteString("\n  /NTILES=4")
		}
		if p.CutPoints && p.CutPointsN > 1 {
			b.WriteString("\n  /NTILES=" + strconv.Itoa(p.CutPointsN))
		}
		if p.Enabled && len(p.Values) > 0 {
			levels := make([]string, len(p.Values))
			for i, l := range p.Values {
				levels[i] = num(l)
			}
			b.WriteString("\n  /PERCENTILES=" + strings.Join(levels, " "))
		}
		if keywords := statisticsKeywords(*s); len(keywords) > 0 {
			b.WriteString("\n  /STATISTICS=" + strings.Join(keywords, " "))
		}
	}
	if c := opts.Charts; c != nil && c.Enabled() {
		values := "FREQ"
		if c.Values == analysis.ChartPercentages {
			values = "PERCENT"
		}
		switch c.Type {
		case analysis.ChartBar:
			b.WriteString("\n  /BARCHART " + values)
		case analysis.ChartPie:
			b.WriteString("\n  /PIECHART " + values)
		case analysis.ChartHistogram:
			if c.ShowNormalCurve {
				b.WriteString("\n  /HISTOGRAM NORMAL")
			} else {
				b.WriteString("\n  /HISTOGRAM")
			}
		}
	}
	b.WriteString("\n  /ORDER=ANALYSIS.")
	return b.String()
}

func statisticsKeywords(s analysis.StatisticsOptions) []string {
	flags := []struct {
		on      bool
		keyword string
	}{
		{s.Dispersion.StdDev, "STDDEV"},
		{s.Dispersion.Variance, "VARIANCE"},
		{s.Dispersion.Range, "RANGE"},
		{s.Dispersion.Minimum, "MINIMUM"},
		{s.Dispersion.Maximum, "MAXIMUM"},
		{s.Dispersion.SEMean, "SEMEAN"},
		{s.CentralTendency.Mean, "MEAN"},
		{s.CentralTendency.Median, "MEDIAN"},
		{s.CentralTendency.Mode, "MODE"},
		{s.CentralTendency.Sum, "SUM"},
		{s.Distribution.Skewness, "SKEWNESS"},
		{s.Distribution.Skewness, "SESKEW"},
		{s.Distribution.Kurtosis, "KURTOSIS"},
		{s.Distribution.Kurtosis, "SEKURT"},
	}
	var out []string
	for _, f := range flags {
		if f.on {
			out = append(out, f.keyword)
		}
	}
	return out
}

func displayStatisticsSyntax(d analysis.DisplayStatistics) string {
	var keywords []string
	if d.Descriptive {
		keywords = append(keywords, "DESCRIPTIVES")
	}
	if d.Quartiles {
		keywords = append(keywords, "QUARTILES")
	}
	if len(keywords) == 0 {
		return ""
	}
	return "\n  /STATISTICS " + strings.Join(keywords, " ")
}

func chiSquareSyntax(req ChiSquareRequest) string {
	var b strings.Builder
	b.WriteString("NPAR TESTS\n  /CHISQUARE=" + variableNames(req.Variables))

	r := req.Options.ExpectedRange
	if r.UseSpecifiedRange {
		lower, upper := "LO", "HI"
		if r.Lower != nil {
			lower = num(*r.Lower)
		}
		if r.Upper != nil {
			upper = num(*r.Upper)
		}
		b.WriteString("(" + lower + "," + upper + ")")
	}

	ev := req.Options.ExpectedValue
	if ev.AllCategoriesEqual || len(ev.Values) == 0 {
		b.WriteString("\n  /EXPECTED=EQUAL")
	} else {
		values := make([]string, len(ev.Values))
		for i, v := range ev.Values {
			values[i] = num(v)
		}
		b.WriteString("\n  /EXPECTED=" + strings.Join(values, " "))
	}
	b.WriteString(displayStatisticsSyntax(req.Options.DisplayStatistics))
	b.WriteString("\n  /MISSING ANALYSIS.")
	return b.String()
}

func runsSyntax(req RunsRequest) string {
	var b strings.Builder
	b.WriteString("NPAR TESTS")
	names := variableNames(req.Variables)
	for _, kind := range req.Options.CutPoint.Selected() {
		cut := strings.ToUpper(string(kind))
		if kind == analysis.CutCustom && req.Options.CustomValue != nil {
			cut = num(*req.Options.CustomValue)
		}
		b.WriteString("\n  /RUNS(" + cut + ")=" + names)
	}
	b.WriteString(displayStatisticsSyntax(req.Options.DisplayStatistics))
	b.WriteString("\n  /MISSING ANALYSIS.")
	return b.String()
}
