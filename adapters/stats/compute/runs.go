package compute

import (
	"fmt"
	"math"

	"gostatcore/domain/analysis"
	"gostatcore/domain/variable"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// smallSampleRuns is the case count below which the continuity correction applies
const smallSampleRuns = 50

// Runs runs the one-sample Runs Test for a single variable request, once
// per selected cut point.
func Runs(req analysis.VariableRequest) analysis.VariableResponse {
	v := req.Variable
	resp := analysis.VariableResponse{VariableName: v.Name, Status: analysis.StatusSuccess}

	if v.IsString() {
		return failed(resp, fmt.Sprintf("Runs Test requires a numeric variable; %s is a string variable", v.DisplayName()))
	}

	var opts analysis.RunsOptions
	if req.Runs != nil {
		opts = *req.Runs
	}

	values, _ := numericColumn(v, req.Data)
	results := &analysis.VariableResults{}

	if req.Wants(analysis.TypeDescriptiveStatistics) || opts.DisplayStatistics.Any() {
		summary := Summarize(values)
		results.Descriptive = &summary
	}

	if req.Wants(analysis.TypeRuns) || len(req.AnalysisType) == 0 {
		results.Runs = map[analysis.CutPointKind]*analysis.RunsResult{}
		for _, kind := range opts.CutPoint.Selected() {
			cut, ok := cutValue(kind, values, opts.CustomValue)
			if !ok {
				if kind == analysis.CutCustom {
					return failed(resp, "a custom cut point requires a value")
				}
				results.Notes = append(results.Notes, fmt.Sprintf("Runs Test cannot be performed for %s using the %s cut point: there are no valid cases.", v.DisplayName(), kind))
				results.Runs[kind] = &analysis.RunsResult{}
				continue
			}

			result := runsTest(values, cut)
			if result.Z == nil {
				results.Notes = append(results.Notes, insufficientRunsNote(v, kind, result))
			}
			results.Runs[kind] = result
		}
	}

	resp.Results = results
	return resp
}

func insufficientRunsNote(v variable.Variable, kind analysis.CutPointKind, r *analysis.RunsResult) string {
	if r.Total < 2 {
		return fmt.Sprintf("Runs Test cannot be performed for %s using the %s cut point: fewer than two valid cases.", v.DisplayName(), kind)
	}
	return fmt.Sprintf("Runs Test cannot be performed for %s using the %s cut point: all values are greater than or less than the cutoff.", v.DisplayName(), kind)
}

func cutValue(kind analysis.CutPointKind, values []float64, custom *float64) (float64, bool) {
	if kind == analysis.CutCustom {
		if custom == nil {
			return 0, false
		}
		return *custom, true
	}
	if len(values) == 0 {
		return 0, false
	}
	switch kind {
	case analysis.CutMedian:
		m, err := stats.Median(values)
		return m, err == nil
	case analysis.CutMean:
		m, err := stats.Mean(values)
		return m, err == nil
	case analysis.CutMode:
		all := modes(sortedCopy(values))
		if len(all) == 0 {
			return 0, false
		}
		return all[0], true
	}
	return 0, false
}

// runsTest classifies each value as below (< cut) or at/above (>= cut) in
// data order and tests the number of runs against its normal approximation.
func runsTest(values []float64, cut float64) *analysis.RunsResult {
	r := &analysis.RunsResult{TestValue: finite(cut), Total: len(values)}

	prev := 0
	for _, x := range values {
		side := 1
		if x < cut {
			side = -1
			r.CasesBelow++
		} else {
			r.CasesAbove++
		}
		if side != prev {
			r.Runs++
			prev = side
		}
	}

	if r.CasesBelow == 0 || r.CasesAbove == 0 || r.Total < 2 {
		return r
	}

	n1, n2 := float64(r.CasesBelow), float64(r.CasesAbove)
	n := n1 + n2
	mu := 2*n1*n2/n + 1
	variance := 2 * n1 * n2 * (2*n1*n2 - n) / (n * n * (n - 1))
	if variance <= 0 {
		return r
	}

	diff := float64(r.Runs) - mu
	if r.Total < smallSampleRuns {
		switch {
		case diff <= -0.5:
			diff += 0.5
		case diff >= 0.5:
			diff -= 0.5
		default:
			diff = 0
		}
	}
	z := diff / math.Sqrt(variance)
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))

	r.Z = finite(z)
	r.PValue = finite(math.Min(p, 1))
	return r
}
