package tables

import (
	"encoding/json"
	"math"

	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/format"

	"gonum.org/v1/gonum/stat"
)

// ChartPoint is one bar, slice or histogram bin
type ChartPoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// NormalCurve parameterizes the curve overlaid on a histogram
type NormalCurve struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	N      float64 `json:"n"`
}

// Chart is the payload persisted with component "chart"
type Chart struct {
	Type       analysis.ChartType `json:"chartType"`
	Title      string             `json:"title"`
	Variable   string             `json:"variable"`
	ValueLabel string             `json:"valueLabel"`
	Data       []ChartPoint       `json:"data"`
	Normal     *NormalCurve       `json:"normalCurve,omitempty"`
}

// FormatCharts derives one chart per variable from its frequency table.
// Histograms are only drawn for numeric variables.
func FormatCharts(vars []variable.Variable, tables map[string]analysis.FrequencyTable, opts analysis.ChartOptions) []Chart {
	if !opts.Enabled() {
		return nil
	}

	var out []Chart
	for _, v := range vars {
		ft, ok := tables[v.Name]
		if !ok {
			continue
		}
		if opts.Type == analysis.ChartHistogram && v.IsString() {
			continue
		}

		c := Chart{
			Type:       opts.Type,
			Title:      v.DisplayName(),
			Variable:   v.Name,
			ValueLabel: "Frequency",
		}
		if opts.Values == analysis.ChartPercentages {
			c.ValueLabel = "Percent"
		}
		for _, r := range ft.Rows {
			value := r.Frequency
			if opts.Values == analysis.ChartPercentages {
				value = r.Percent
			}
			c.Data = append(c.Data, ChartPoint{Category: r.Label, Value: value})
		}
		if opts.Type == analysis.ChartHistogram && opts.ShowNormalCurve {
			c.Normal = normalCurve(ft)
		}
		out = append(out, c)
	}
	return out
}

func normalCurve(ft analysis.FrequencyTable) *NormalCurve {
	var xs, ws []float64
	for _, r := range ft.Rows {
		if r.Value == nil {
			continue
		}
		xs = append(xs, *r.Value)
		ws = append(ws, r.Frequency)
	}
	if len(xs) == 0 {
		return nil
	}
	mean, sd := stat.MeanStdDev(xs, ws)
	if math.IsNaN(sd) {
		sd = 0
	}
	return &NormalCurve{Mean: mean, StdDev: sd, N: ft.Summary.Valid}
}

// MarshalCharts serializes charts into an output_data JSON string
func MarshalCharts(charts []Chart) (string, error) {
	if charts == nil {
		charts = []Chart{}
	}
	b, err := json.Marshal(struct {
		Charts []Chart `json:"charts"`
	}{charts})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalCharts parses an output_data JSON string written by MarshalCharts
func UnmarshalCharts(s string) ([]Chart, error) {
	var out struct {
		Charts []Chart `json:"charts"`
	}
	err := json.Unmarshal([]byte(s), &out)
	return out.Charts, err
}

// ChartTable lists a chart's data points for outputs that cannot draw
func ChartTable(c Chart) table.FormattedTable {
	rows := make([]table.Row, 0, len(c.Data))
	for _, p := range c.Data {
		rows = append(rows, table.NewRow(p.Category).Set("value", p.Value))
	}
	t := table.FormattedTable{
		Title: c.Title,
		ColumnHeaders: []table.ColumnHeader{
			{Header: "", Key: "rowHeader"},
			{Header: c.ValueLabel, Key: "value"},
		},
		Rows: rows,
	}
	if n := c.Normal; n != nil {
		t.Footer = "Normal curve: mean " + format.Fixed(n.Mean, 2) + ", std. deviation " + format.Fixed(n.StdDev, 2) + ", N " + format.Fixed(n.N, 0)
	}
	return t
}
