package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"gostatcore/adapters/excel"
	"gostatcore/app"
	"gostatcore/domain/table"
	apperrors "gostatcore/internal/errors"
	"gostatcore/internal/render"
	"gostatcore/internal/tables"
	"gostatcore/ports"

	"github.com/spf13/cobra"
)

type jsonStatistic struct {
	Title       string          `json:"title"`
	Components  string          `json:"components"`
	Description string          `json:"description"`
	Output      json.RawMessage `json:"output"`
}

type jsonReport struct {
	Title      string          `json:"title,omitempty"`
	Log        string          `json:"log,omitempty"`
	Note       string          `json:"note,omitempty"`
	ErrorMsg   string          `json:"errorMsg,omitempty"`
	Statistics []jsonStatistic `json:"statistics"`
}

// emit prints the outcome of a run and exports its tables. A failed run is
// reported as an error after whatever output it produced.
func (s *session) emit(cmd *cobra.Command, out app.Outcome, runErr error) error {
	if runErr != nil {
		if apperrors.GetCode(runErr) == apperrors.CodeValidationError {
			return errors.New(out.ErrorMsg)
		}
		return runErr
	}

	report, all, err := buildReport(out)
	if err != nil {
		return err
	}

	var text string
	if s.format == "json" {
		text, err = jsonOutput(out)
	} else {
		f, _ := render.ParseFormat(s.format)
		text, err = render.Render(report, f)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if s.xlsxPath != "" && len(all) > 0 {
		if err := excel.WriteWorkbook(s.xlsxPath, all); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "tables exported to %s\n", s.xlsxPath)
	}

	if out.State == app.StateFailed {
		return errors.New(out.ErrorMsg)
	}
	return nil
}

// buildReport decodes persisted statistics back into tables. Charts are
// listed as tables of their data points.
func buildReport(out app.Outcome) (render.Report, []table.FormattedTable, error) {
	report := render.Report{ErrorMsg: out.ErrorMsg}
	var all []table.FormattedTable
	r := out.Result
	if r == nil {
		return report, nil, nil
	}
	report.Title, report.Note = r.Title, r.Note

	for _, s := range r.Statistics {
		section := render.Section{Title: s.Title}
		switch s.Components {
		case ports.ComponentChart:
			charts, err := tables.UnmarshalCharts(s.OutputData)
			if err != nil {
				return report, nil, fmt.Errorf("decoding chart %q: %w", s.Title, err)
			}
			for _, c := range charts {
				section.Tables = append(section.Tables, tables.ChartTable(c))
			}
		default:
			decoded, err := table.UnmarshalOutput(s.OutputData)
			if err != nil {
				return report, nil, fmt.Errorf("decoding table %q: %w", s.Title, err)
			}
			section.Tables = decoded.Tables
		}
		all = append(all, section.Tables...)
		report.Sections = append(report.Sections, section)
	}
	return report, all, nil
}

func jsonOutput(out app.Outcome) (string, error) {
	report := jsonReport{ErrorMsg: out.ErrorMsg, Statistics: []jsonStatistic{}}
	if r := out.Result; r != nil {
		report.Title, report.Log, report.Note = r.Title, r.Log, r.Note
		for _, s := range r.Statistics {
			report.Statistics = append(report.Statistics, jsonStatistic{
				Title:       s.Title,
				Components:  s.Components,
				Description: s.Description,
				Output:      json.RawMessage(s.OutputData),
			})
		}
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
