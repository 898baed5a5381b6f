package compute

import (
	"fmt"
	"sort"

	"gostatcore/domain/analysis"
	"gostatcore/domain/variable"
)

type category struct {
	label string
	value *float64
	count float64
}

// Frequencies runs the batched Frequencies computation for every variable in
// the request. Cases with a missing, zero or negative weight are excluded.
func Frequencies(req analysis.FrequenciesRequest) (*analysis.FrequenciesResults, error) {
	results := &analysis.FrequenciesResults{
		Statistics:      map[string]analysis.DescriptiveStatistics{},
		FrequencyTables: map[string]analysis.FrequencyTable{},
	}

	for _, vd := range req.VariableData {
		weights, err := caseWeights(req.WeightVariableData, len(vd.Data))
		if err != nil {
			return nil, err
		}
		cases := applyWeights(vd.Data, weights)

		if req.Options.DisplayFrequency || (req.Options.Charts != nil && req.Options.Charts.Enabled()) {
			results.FrequencyTables[vd.Variable.Name] = frequencyDistribution(vd.Variable, cases)
		}

		if req.Options.DisplayDescriptive && req.Options.Statistics != nil {
			results.Statistics[vd.Variable.Name] = describeVariable(vd.Variable, cases, *req.Options.Statistics)
		}
	}

	return results, nil
}

type weightedCase struct {
	cell   any
	weight float64
}

func caseWeights(wv *analysis.VariableData, n int) ([]float64, error) {
	if wv == nil {
		return nil, nil
	}
	if len(wv.Data) != n {
		return nil, fmt.Errorf("weight variable %s has %d cases, expected %d", wv.Variable.Name, len(wv.Data), n)
	}
	weights := make([]float64, n)
	for i, cell := range wv.Data {
		if w, ok := toFloat(cell, false); ok && w > 0 {
			weights[i] = w
		}
	}
	return weights, nil
}

func applyWeights(data []any, weights []float64) []weightedCase {
	cases := make([]weightedCase, 0, len(data))
	for i, cell := range data {
		w := 1.0
		if weights != nil {
			w = weights[i]
			if w <= 0 {
				continue
			}
		}
		cases = append(cases, weightedCase{cell: cell, weight: w})
	}
	return cases
}

// frequencyDistribution builds the raw frequency table of one variable
func frequencyDistribution(v variable.Variable, cases []weightedCase) analysis.FrequencyTable {
	cats, summary := categorize(v, cases)

	table := analysis.FrequencyTable{
		Title:   v.DisplayName(),
		Rows:    make([]analysis.FrequencyRow, 0, len(cats)),
		Summary: summary,
	}

	cumulative := 0.0
	for _, c := range cats {
		row := analysis.FrequencyRow{
			Label:     c.label,
			Value:     c.value,
			Frequency: c.count,
		}
		if summary.Total > 0 {
			row.Percent = c.count / summary.Total * 100
		}
		if summary.Valid > 0 {
			row.ValidPercent = c.count / summary.Valid * 100
		}
		cumulative += row.ValidPercent
		row.CumulativePercent = cumulative
		table.Rows = append(table.Rows, row)
	}
	return table
}

// categorize groups valid cases into ordered categories
func categorize(v variable.Variable, cases []weightedCase) ([]category, analysis.FrequencySummary) {
	var summary analysis.FrequencySummary
	var cats []category

	if v.IsString() {
		counts := map[string]float64{}
		for _, c := range cases {
			summary.Total += c.weight
			s, ok := toText(c.cell)
			if !ok {
				summary.Missing += c.weight
				continue
			}
			summary.Valid += c.weight
			counts[s] += c.weight
		}
		for label, count := range counts {
			cats = append(cats, category{label: label, count: count})
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i].label < cats[j].label })
		return cats, summary
	}

	isDate := variable.IsDateVariable(v)
	counts := map[float64]float64{}
	for _, c := range cases {
		summary.Total += c.weight
		f, ok := toFloat(c.cell, isDate)
		if !ok {
			summary.Missing += c.weight
			continue
		}
		summary.Valid += c.weight
		counts[f] += c.weight
	}
	for value, count := range counts {
		value := value
		cats = append(cats, category{label: valueLabel(v, value), value: &value, count: count})
	}
	sort.Slice(cats, func(i, j int) bool { return *cats[i].value < *cats[j].value })
	return cats, summary
}

func describeVariable(v variable.Variable, cases []weightedCase, opts analysis.StatisticsOptions) analysis.DescriptiveStatistics {
	if v.IsString() {
		return describeText(cases, opts)
	}

	isDate := variable.IsDateVariable(v)
	values := make([]float64, 0, len(cases))
	weights := make([]float64, 0, len(cases))
	missing := 0.0
	for _, c := range cases {
		f, ok := toFloat(c.cell, isDate)
		if !ok {
			missing += c.weight
			continue
		}
		values = append(values, f)
		weights = append(weights, c.weight)
	}
	return DescribeWeighted(values, weights, missing, opts)
}

// describeText reports the weighted N and, when requested, the modal
// categories of a string variable.
func describeText(cases []weightedCase, opts analysis.StatisticsOptions) analysis.DescriptiveStatistics {
	var out analysis.DescriptiveStatistics
	counts := map[string]float64{}
	for _, c := range cases {
		s, ok := toText(c.cell)
		if !ok {
			out.Missing += c.weight
			continue
		}
		out.N += c.weight
		counts[s] += c.weight
	}
	if !opts.CentralTendency.Mode || len(counts) == 0 {
		return out
	}

	best := 0.0
	for _, count := range counts {
		if count > best {
			best = count
		}
	}
	for label, count := range counts {
		if count == best {
			out.ModeText = append(out.ModeText, label)
		}
	}
	sort.Strings(out.ModeText)
	return out
}
