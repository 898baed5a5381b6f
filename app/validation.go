package app

import "gostatcore/domain/analysis"

// User-facing validation messages
const (
	msgNoVariables      = "Please select at least one variable."
	msgNoRangeBound     = "Please enter a lower or an upper value for the expected range."
	msgNoExpectedValues = "Please enter at least one expected value."
	msgRangeTooWide     = "The expected range can span at most 1000 categories."
	msgNoCutPoint       = "Please select at least one cut point."
	msgNoCustomCutValue = "Please enter a value for the custom cut point."
	msgWeightLength     = "The weight variable must have one value per case."
)

func validateFrequencies(req analysis.FrequenciesRequest) string {
	if len(req.VariableData) == 0 {
		return msgNoVariables
	}
	if w := req.WeightVariableData; w != nil {
		for _, vd := range req.VariableData {
			if len(vd.Data) != len(w.Data) {
				return msgWeightLength
			}
		}
	}
	return ""
}

func validateChiSquare(req ChiSquareRequest) string {
	if len(req.Variables) == 0 {
		return msgNoVariables
	}
	r := req.Options.ExpectedRange
	if r.UseSpecifiedRange && r.Lower == nil && r.Upper == nil {
		return msgNoRangeBound
	}
	if r.TooWide() {
		return msgRangeTooWide
	}
	ev := req.Options.ExpectedValue
	if !ev.AllCategoriesEqual && len(ev.Values) == 0 {
		return msgNoExpectedValues
	}
	return ""
}

func validateRuns(req RunsRequest) string {
	if len(req.Variables) == 0 {
		return msgNoVariables
	}
	cut := req.Options.CutPoint
	if len(cut.Selected()) == 0 {
		return msgNoCutPoint
	}
	if cut.Custom && req.Options.CustomValue == nil {
		return msgNoCustomCutValue
	}
	return ""
}
