package app

import (
	"context"
	"fmt"
	"strings"

	"gostatcore/domain/analysis"
	apperrors "gostatcore/internal/errors"
	"gostatcore/internal/tables"
	"gostatcore/internal/worker"
)

// ChiSquareRequest is one Chi-Square run over several variables sharing the
// same options.
type ChiSquareRequest struct {
	Variables []analysis.VariableData   `json:"variables"`
	Options   analysis.ChiSquareOptions `json:"options"`
}

// ChiSquareAnalysis runs the Chi-Square goodness-of-fit test with one
// computation unit per variable.
type ChiSquareAnalysis struct {
	*runner
}

// NewChiSquareAnalysis creates an idle Chi-Square analysis
func NewChiSquareAnalysis(deps Deps) *ChiSquareAnalysis {
	return &ChiSquareAnalysis{newRunner("chisquare", "Chi-Square", worker.KindChiSquare, deps)}
}

// RunAnalysis cancels any run in flight, validates req and dispatches one
// request per variable.
func (a *ChiSquareAnalysis) RunAnalysis(ctx context.Context, req ChiSquareRequest) error {
	types := []string{analysis.TypeChiSquare}
	if req.Options.DisplayStatistics.Any() {
		types = []string{analysis.TypeDescriptiveStatistics, analysis.TypeChiSquare}
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
				ChiSquare:    &opts,
			},
		}
	}
	return a.start(ctx, validateChiSquare(req), jobs, chiSquareProcedure{req: req})
}

type chiSquareProcedure struct {
	req ChiSquareRequest
}

func (p chiSquareProcedure) decode(j job, reply any) (any, error) {
	return decodeVariableResponse(j, reply)
}

func (p chiSquareProcedure) aggregate(results map[string]any) (Result, error) {
	res := Result{Title: "Chi-Square Test", Log: chiSquareSyntax(p.req)}
	outcomes := orderedOutcomes(p.req.Variables, results)
	res.Note = joinNotes(outcomes)

	if t := tables.FormatDescriptiveStatistics(outcomes, p.req.Options.DisplayStatistics); t != nil {
		entry, err := tableEntry("Descriptive Statistics", "Descriptive statistics of the tested variables", *t)
		if err != nil {
			return res, err
		}
		res.Statistics = append(res.Statistics, entry)
	}

	if freq := tables.FormatChiSquareFrequencies(outcomes, p.req.Options); len(freq) > 0 {
		entry, err := tableEntry("Frequencies", "Observed and expected frequencies", freq...)
		if err != nil {
			return res, err
		}
		res.Statistics = append(res.Statistics, entry)
	}

	if t := tables.FormatChiSquareTestStatistics(outcomes); t != nil {
		entry, err := tableEntry("Test Statistics", "Chi-Square goodness-of-fit test", *t)
		if err != nil {
			return res, err
		}
		res.Statistics = append(res.Statistics, entry)
	}
	return res, nil
}

// decodeVariableResponse turns a per-variable reply into an outcome. Failed
// variables are reported by display name.
func decodeVariableResponse(j job, reply any) (any, error) {
	resp, ok := reply.(analysis.VariableResponse)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected reply %T", j.variable.DisplayName(), reply)
	}
	if resp.Status == analysis.StatusError || resp.Results == nil {
		msg := resp.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, apperrors.ComputationError(j.variable.DisplayName(), msg)
	}
	return analysis.VariableOutcome{Variable: j.variable, Results: *resp.Results}, nil
}

// orderedOutcomes returns the successful outcomes in request order
func orderedOutcomes(vars []analysis.VariableData, results map[string]any) []analysis.VariableOutcome {
	var out []analysis.VariableOutcome
	for _, vd := range vars {
		if o, ok := results[vd.Variable.Name].(analysis.VariableOutcome); ok {
			out = append(out, o)
		}
	}
	return out
}

func joinNotes(outcomes []analysis.VariableOutcome) string {
	var notes []string
	for _, o := range outcomes {
		notes = append(notes, o.Results.Notes...)
	}
	return strings.Join(notes, "\n")
}
