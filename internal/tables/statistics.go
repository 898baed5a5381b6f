package tables

import (
	"sort"
	"strconv"
	"strings"

	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/format"
)

const (
	multipleModesNote  = "Multiple modes exist; the smallest value is shown."
	ordinalCautionNote = "Statistics other than the mode, median and percentiles are computed on ordinal codes and should be interpreted with caution."
)

type statRow struct {
	label string
	key   variable.StatKey
	value func(analysis.DescriptiveStatistics) *float64
}

// rows between Mode and Percentiles; N, Mean, SEMean, Median and Mode lead
var momentRows = []statRow{
	{"Std. Deviation", variable.StatStdDev, func(s analysis.DescriptiveStatistics) *float64 { return s.StdDev }},
	{"Variance", variable.StatVariance, func(s analysis.DescriptiveStatistics) *float64 { return s.Variance }},
	{"Skewness", variable.StatSkewness, func(s analysis.DescriptiveStatistics) *float64 { return s.Skewness }},
	{"Std. Error of Skewness", variable.StatSESkewness, func(s analysis.DescriptiveStatistics) *float64 { return s.SESkewness }},
	{"Kurtosis", variable.StatKurtosis, func(s analysis.DescriptiveStatistics) *float64 { return s.Kurtosis }},
	{"Std. Error of Kurtosis", variable.StatSEKurtosis, func(s analysis.DescriptiveStatistics) *float64 { return s.SEKurtosis }},
	{"Range", variable.StatRange, func(s analysis.DescriptiveStatistics) *float64 { return s.Range }},
	{"Minimum", variable.StatMinimum, func(s analysis.DescriptiveStatistics) *float64 { return s.Minimum }},
	{"Maximum", variable.StatMaximum, func(s analysis.DescriptiveStatistics) *float64 { return s.Maximum }},
	{"Sum", variable.StatSum, func(s analysis.DescriptiveStatistics) *float64 { return s.Sum }},
}

var (
	meanRow   = statRow{"Mean", variable.StatMean, func(s analysis.DescriptiveStatistics) *float64 { return s.Mean }}
	seMeanRow = statRow{"Std. Error of Mean", variable.StatSEMean, func(s analysis.DescriptiveStatistics) *float64 { return s.SEMean }}
	medianRow = statRow{"Median", variable.StatMedian, func(s analysis.DescriptiveStatistics) *float64 { return s.Median }}
)

// dateDisplayable lists the statistics a date variable shows, as dd-mm-yyyy
var dateDisplayable = map[variable.StatKey]bool{
	variable.StatMode:        true,
	variable.StatMedian:      true,
	variable.StatPercentiles: true,
}

// FormatStatisticsTable builds the Frequencies "Statistics" table with one
// column per variable. It returns nil when results is empty.
func FormatStatisticsTable(results []analysis.VariableStatistics) *table.FormattedTable {
	if len(results) == 0 {
		return nil
	}

	b := statisticsBuilder{results: results}
	b.markers()

	cols := []table.ColumnHeader{{Header: "", Key: "rowHeader"}}
	for _, r := range results {
		header := r.Variable.DisplayName()
		if b.cautionVars[r.Variable.Name] {
			header += sup(b.cautionMark)
		}
		cols = append(cols, table.ColumnHeader{Header: header, Key: r.Variable.Name})
	}

	n := table.NewRow("N")
	valid, missing := table.NewRow(nil, "Valid"), table.NewRow(nil, "Missing")
	for _, r := range results {
		valid = valid.Set(r.Variable.Name, r.Statistics.N)
		missing = missing.Set(r.Variable.Name, r.Statistics.Missing)
	}
	n.Children = []table.Row{valid, missing}

	rows := []table.Row{n}
	for _, sr := range []statRow{meanRow, seMeanRow, medianRow} {
		if row, ok := b.numericRow(sr); ok {
			rows = append(rows, row)
		}
	}
	if row, ok := b.modeRow(); ok {
		rows = append(rows, row)
	}
	for _, sr := range momentRows {
		if row, ok := b.numericRow(sr); ok {
			rows = append(rows, row)
		}
	}
	if row, ok := b.percentileRow(); ok {
		rows = append(rows, row)
	}

	return &table.FormattedTable{
		Title:         "Statistics",
		ColumnHeaders: cols,
		Rows:          rows,
		Footer:        b.footer(),
	}
}

type statisticsBuilder struct {
	results     []analysis.VariableStatistics
	modeMark    string
	cautionMark string
	cautionVars map[string]bool
}

// markers assigns footnote letters in fixed order: multiple modes, then the
// ordinal caution.
func (b *statisticsBuilder) markers() {
	b.cautionVars = map[string]bool{}
	multiple := false
	for _, r := range b.results {
		if r.Statistics.MultipleModes() && variable.AllowsStat(r.Variable, variable.StatMode) {
			multiple = true
		}
		if ordinalWithCaution(r) {
			b.cautionVars[r.Variable.Name] = true
		}
	}

	next := 'a'
	if multiple {
		b.modeMark = string(next)
		next++
	}
	if len(b.cautionVars) > 0 {
		b.cautionMark = string(next)
	}
}

func (b *statisticsBuilder) footer() string {
	var notes []string
	if b.modeMark != "" {
		notes = append(notes, b.modeMark+". "+multipleModesNote)
	}
	if b.cautionMark != "" {
		notes = append(notes, b.cautionMark+". "+ordinalCautionNote)
	}
	return strings.Join(notes, "\n")
}

func ordinalWithCaution(r analysis.VariableStatistics) bool {
	if variable.EffectiveMeasure(r.Variable) != variable.MeasureOrdinal || variable.IsDateVariable(r.Variable) {
		return false
	}
	s := r.Statistics
	for _, sr := range append([]statRow{meanRow, seMeanRow}, momentRows...) {
		if variable.IsCautionStat(sr.key) && sr.value(s) != nil {
			return true
		}
	}
	return false
}

// numericRow renders one statistic for every variable. The row is omitted
// when no variable has the statistic computed.
func (b *statisticsBuilder) numericRow(sr statRow) (table.Row, bool) {
	row := table.NewRow(sr.label)
	present := false
	for _, r := range b.results {
		value := sr.value(r.Statistics)
		if value != nil {
			present = true
		}
		row = row.Set(r.Variable.Name, statCell(r.Variable, sr.key, value))
	}
	return row, present
}

func statCell(v variable.Variable, key variable.StatKey, value *float64) any {
	if value == nil || !variable.AllowsStat(v, key) {
		return ""
	}
	if variable.IsDateVariable(v) {
		if !dateDisplayable[key] {
			return ""
		}
		return format.FormatSPSSDate(value)
	}
	return *format.FormatNumber(value, format.StatsDecimalPlaces)
}

func (b *statisticsBuilder) modeRow() (table.Row, bool) {
	row := table.NewRow("Mode")
	present := false
	for _, r := range b.results {
		s := r.Statistics
		if !s.HasMode() {
			row = row.Set(r.Variable.Name, "")
			continue
		}
		present = true

		var cell string
		if len(s.ModeText) > 0 {
			cell = s.ModeText[0]
		} else {
			smallest := s.Mode[0]
			cell = statCell(r.Variable, variable.StatMode, &smallest).(string)
		}
		if s.MultipleModes() && cell != "" {
			cell += sup(b.modeMark)
		}
		row = row.Set(r.Variable.Name, cell)
	}
	return row, present
}

func (b *statisticsBuilder) percentileRow() (table.Row, bool) {
	levels := percentileUnion(b.results)
	if len(levels) == 0 {
		return table.Row{}, false
	}

	group := table.NewRow("Percentiles")
	for _, level := range levels {
		child := table.NewRow(nil, analysis.PercentileKey(level))
		for _, r := range b.results {
			p, ok := r.Statistics.Percentile(level)
			var cell any = ""
			if ok {
				cell = statCell(r.Variable, variable.StatPercentiles, &p)
			}
			child = child.Set(r.Variable.Name, cell)
		}
		group.Children = append(group.Children, child)
	}
	return group, true
}

// percentileUnion collects every requested or computed percentile level
// across results, ascending.
func percentileUnion(results []analysis.VariableStatistics) []float64 {
	seen := map[float64]bool{}
	var levels []float64
	add := func(level float64) {
		if !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	for _, r := range results {
		for _, level := range r.Levels {
			add(level)
		}
		for key := range r.Statistics.Percentiles {
			if level, err := strconv.ParseFloat(key, 64); err == nil {
				add(level)
			}
		}
	}
	sort.Float64s(levels)
	return levels
}

func sup(mark string) string {
	if mark == "" {
		return ""
	}
	return "<sup>" + mark + "</sup>"
}
