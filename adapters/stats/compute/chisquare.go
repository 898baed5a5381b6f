package compute

import (
	"fmt"
	"math"
	"sort"

	"gostatcore/domain/analysis"
	"gostatcore/domain/variable"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare runs the one-sample Chi-Square goodness-of-fit test for a single
// variable request.
func ChiSquare(req analysis.VariableRequest) analysis.VariableResponse {
	v := req.Variable
	resp := analysis.VariableResponse{VariableName: v.Name, Status: analysis.StatusSuccess}

	if v.IsString() {
		return failed(resp, fmt.Sprintf("Chi-Square Test requires a numeric variable; %s is a string variable", v.DisplayName()))
	}

	opts := analysis.ChiSquareOptions{ExpectedRange: analysis.ExpectedRange{GetFromData: true}, ExpectedValue: analysis.ExpectedValue{AllCategoriesEqual: true}}
	if req.ChiSquare != nil {
		opts = *req.ChiSquare
	}

	values, _ := numericColumn(v, req.Data)
	results := &analysis.VariableResults{}

	if req.Wants(analysis.TypeDescriptiveStatistics) || opts.DisplayStatistics.Any() {
		summary := Summarize(values)
		results.Descriptive = &summary
	}

	if req.Wants(analysis.TypeChiSquare) || len(req.AnalysisType) == 0 {
		result, note, err := chiSquareTest(v, values, opts)
		if err != nil {
			return failed(resp, err.Error())
		}
		results.ChiSquare = result
		if note != "" {
			results.Notes = append(results.Notes, note)
		}
	}

	resp.Results = results
	return resp
}

func chiSquareTest(v variable.Variable, values []float64, opts analysis.ChiSquareOptions) (*analysis.ChiSquareResult, string, error) {
	cats, err := chiSquareCategories(v, values, opts.ExpectedRange)
	if err != nil {
		return nil, "", err
	}

	result := &analysis.ChiSquareResult{}
	for _, c := range cats {
		result.TotalObserved += c.ObservedN
	}

	if len(cats) < 2 || result.TotalObserved == 0 {
		result.Categories = cats
		note := fmt.Sprintf("Chi-Square Test cannot be performed for %s: at least two categories with valid cases are required.", v.DisplayName())
		return result, note, nil
	}

	proportions, err := expectedProportions(len(cats), opts.ExpectedValue)
	if err != nil {
		return nil, "", err
	}

	chi := 0.0
	result.MinExpected = math.Inf(1)
	for i := range cats {
		expected := result.TotalObserved * proportions[i]
		cats[i].ExpectedN = expected
		cats[i].Residual = cats[i].ObservedN - expected
		if expected > 0 {
			chi += cats[i].Residual * cats[i].Residual / expected
		}
		if expected < 5 {
			result.CellsBelowFive++
		}
		result.MinExpected = math.Min(result.MinExpected, expected)
	}
	result.Categories = cats

	df := float64(len(cats) - 1)
	p := distuv.ChiSquared{K: df}.Survival(chi)
	result.ChiSquare = finite(chi)
	result.DF = &df
	result.PValue = finite(p)
	return result, "", nil
}

// chiSquareCategories counts observations per category. With a specified
// range every integer in [lower, upper] is a category and values outside the
// range are excluded.
func chiSquareCategories(v variable.Variable, values []float64, r analysis.ExpectedRange) ([]analysis.ChiSquareCategory, error) {
	if r.UseSpecifiedRange {
		if r.Lower == nil && r.Upper == nil {
			return nil, fmt.Errorf("specified range for %s needs a lower or an upper value", v.DisplayName())
		}
		if len(values) == 0 {
			return nil, nil
		}
		lower, upper := rangeBounds(values, r)
		if lower > upper {
			return nil, fmt.Errorf("lower value %v is greater than upper value %v", lower, upper)
		}
		n, ok := analysis.RangeCategories(lower, upper)
		if !ok {
			return nil, fmt.Errorf("range %v to %v spans more than %d categories", lower, upper, analysis.MaxRangeCategories)
		}

		counts := map[float64]float64{}
		for _, x := range values {
			x = math.Trunc(x)
			if x >= lower && x <= upper {
				counts[x]++
			}
		}
		cats := make([]analysis.ChiSquareCategory, 0, n)
		for x := lower; x <= upper; x++ {
			x := x
			cats = append(cats, analysis.ChiSquareCategory{Category: valueLabel(v, x), Value: &x, ObservedN: counts[x]})
		}
		return cats, nil
	}

	counts := map[float64]float64{}
	for _, x := range values {
		counts[x]++
	}
	cats := make([]analysis.ChiSquareCategory, 0, len(counts))
	for x, n := range counts {
		x := x
		cats = append(cats, analysis.ChiSquareCategory{Category: valueLabel(v, x), Value: &x, ObservedN: n})
	}
	sort.Slice(cats, func(i, j int) bool { return *cats[i].Value < *cats[j].Value })
	return cats, nil
}

// rangeBounds resolves the integer bounds of a specified range. A missing
// bound falls back to the data minimum or maximum.
func rangeBounds(values []float64, r analysis.ExpectedRange) (float64, float64) {
	sorted := sortedCopy(values)
	lower, upper := math.Floor(sorted[0]), math.Ceil(sorted[len(sorted)-1])
	if r.Lower != nil {
		lower = math.Ceil(*r.Lower)
	}
	if r.Upper != nil {
		upper = math.Floor(*r.Upper)
	}
	return lower, upper
}

func expectedProportions(k int, ev analysis.ExpectedValue) ([]float64, error) {
	out := make([]float64, k)
	if ev.AllCategoriesEqual || len(ev.Values) == 0 {
		for i := range out {
			out[i] = 1 / float64(k)
		}
		return out, nil
	}

	if len(ev.Values) != k {
		return nil, fmt.Errorf("%d expected values were given for %d categories", len(ev.Values), k)
	}
	total := 0.0
	for _, w := range ev.Values {
		if w <= 0 {
			return nil, fmt.Errorf("expected values must be positive, got %v", w)
		}
		total += w
	}
	for i, w := range ev.Values {
		out[i] = w / total
	}
	return out, nil
}

func failed(resp analysis.VariableResponse, msg string) analysis.VariableResponse {
	resp.Status = analysis.StatusError
	resp.Error = msg
	resp.Results = nil
	return resp
}
