package app

import (
	"context"
	"errors"

	"gostatcore/domain/analysis"
	"gostatcore/domain/table"
	"gostatcore/domain/variable"
	"gostatcore/internal/tables"
	"gostatcore/internal/worker"
	"gostatcore/ports"
)

const frequenciesKey = "frequencies"

// FrequenciesAnalysis runs the Frequencies procedure. All variables travel
// in a single batched request to one computation unit.
type FrequenciesAnalysis struct {
	*runner
}

// NewFrequenciesAnalysis creates an idle Frequencies analysis
func NewFrequenciesAnalysis(deps Deps) *FrequenciesAnalysis {
	return &FrequenciesAnalysis{newRunner("frequencies", "Frequencies", worker.KindFrequencies, deps)}
}

// RunAnalysis cancels any run in flight, validates req and dispatches it. It
// returns once the request is posted; use Wait to block on completion.
func (a *FrequenciesAnalysis) RunAnalysis(ctx context.Context, req analysis.FrequenciesRequest) error {
	jobs := []job{{key: frequenciesKey, msg: req}}
	return a.start(ctx, validateFrequencies(req), jobs, frequenciesProcedure{req: req})
}

type frequenciesProcedure struct {
	req analysis.FrequenciesRequest
}

func (p frequenciesProcedure) decode(_ job, reply any) (any, error) {
	resp, ok := reply.(analysis.FrequenciesResponse)
	if !ok {
		return nil, errors.New("unexpected reply from the Frequencies unit")
	}
	if !resp.Success || resp.Results == nil {
		if resp.Error == "" {
			return nil, errors.New("Unknown error")
		}
		return nil, errors.New(resp.Error)
	}
	return resp.Results, nil
}

func (p frequenciesProcedure) aggregate(results map[string]any) (Result, error) {
	res := Result{Title: "Frequencies", Log: frequenciesSyntax(p.req)}
	fr, _ := results[frequenciesKey].(*analysis.FrequenciesResults)
	if fr == nil {
		return res, nil
	}

	opts := p.req.Options
	vars := make([]variable.Variable, len(p.req.VariableData))
	for i, vd := range p.req.VariableData {
		vars[i] = vd.Variable
	}

	if opts.DisplayDescriptive && opts.Statistics != nil {
		var stats []analysis.VariableStatistics
		levels := opts.Statistics.PercentileLevels()
		for _, v := range vars {
			if s, ok := fr.Statistics[v.Name]; ok {
				stats = append(stats, analysis.VariableStatistics{Variable: v, Statistics: s, Levels: levels})
			}
		}
		if t := tables.FormatStatisticsTable(stats); t != nil {
			entry, err := tableEntry("Statistics", "Descriptive statistics of the selected variables", *t)
			if err != nil {
				return res, err
			}
			res.Statistics = append(res.Statistics, entry)
		}
	}

	if opts.DisplayFrequency {
		for _, v := range vars {
			ft, ok := fr.FrequencyTables[v.Name]
			if !ok {
				continue
			}
			t := tables.FormatFrequencyTable(ft, v)
			entry, err := tableEntry(t.Title, "Frequency table of "+v.DisplayName(), t)
			if err != nil {
				return res, err
			}
			res.Statistics = append(res.Statistics, entry)
		}
	}

	if c := opts.Charts; c != nil {
		for _, chart := range tables.FormatCharts(vars, fr.FrequencyTables, *c) {
			data, err := tables.MarshalCharts([]tables.Chart{chart})
			if err != nil {
				return res, err
			}
			res.Statistics = append(res.Statistics, ports.StatisticEntry{
				Title:       chart.Title,
				OutputData:  data,
				Components:  ports.ComponentChart,
				Description: string(chart.Type) + " of " + chart.Title,
			})
		}
	}
	return res, nil
}

// tableEntry wraps formatted tables into one statistic entry
func tableEntry(title, description string, ts ...table.FormattedTable) (ports.StatisticEntry, error) {
	data, err := table.MarshalOutput(ts...)
	if err != nil {
		return ports.StatisticEntry{}, err
	}
	return ports.StatisticEntry{
		Title:       title,
		OutputData:  data,
		Components:  ports.ComponentTable,
		Description: description,
	}, nil
}
