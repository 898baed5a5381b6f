package app

import (
	"context"

	"gostatcore/domain/analysis"
	"gostatcore/internal/tables"
	"gostatcore/internal/worker"
)

// RunsRequest is one Runs Test over several variables sharing the same cut
// points.
type RunsRequest struct {
	Variables []analysis.VariableData `json:"variables"`
	Options   analysis.RunsOptions    `json:"options"`
}

// RunsAnalysis runs the Runs Test with one computation unit per variable
type RunsAnalysis struct {
	*runner
}

func NewRunsAnalysis(deps Deps) *RunsAnalysis {
	return &RunsAnalysis{newRunner("runs", "Runs", worker.KindRuns, deps)}
}

func (a *RunsAnalysis) RunAnalysis(ctx context.Context, req RunsRequest) error {
	types := []string{analysis.TypeRuns}
	if req.Options.DisplayStatistics.Any() {
		types = []string{analysis.TypeDescriptiveStatistics, analysis.TypeRuns}
	}
	opts := req.Options
	jobs := make([]job, len(req.Variables))
	for i, vd := range req.Variables {
		jobs[i] = job{
			key:      vd.Variable.Name,
			variable: vd.Variable,
			msg: analysis.VariableRequest{
				AnalysisType: types,
				Variable:     vd.Variable,
				Data:         vd.Data,
				Runs:         &opts,
			},
		}
	}
	return a.start(ctx, validateRuns(req), jobs, runsProcedure{req: req})
}

type runsProcedure struct {
	req RunsRequest
}

func (p runsProcedure) decode(j job, reply any) (any, error) {
	return decodeVariableResponse(j, reply)
}

func (p runsProcedure) aggregate(results map[string]any) (Result, error) {
	res := Result{Title: "Runs Test", Log: runsSyntax(p.req)}
	outcomes := orderedOutcomes(p.req.Variables, results)
	res.Note = joinNotes(outcomes)

	if t := tables.FormatDescriptiveStatistics(outcomes, p.req.Options.DisplayStatistics); t != nil {
		entry, err := tableEntry("Descriptive Statistics", "Descriptive statistics of the tested variables", *t)
		if err != nil {
			return res, err
		}
		res.Statistics = append(res.Statistics, entry)
	}

	entry, err := tableEntry("Runs Test", "Runs Test by cut point", tables.FormatRunsTestTables(outcomes, p.req.Options.CustomValue)...)
	if err != nil {
		return res, err
	}
	res.Statistics = append(res.Statistics, entry)
	return res, nil
}
