package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gostatcore/domain/analysis"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI executes the root command in an empty directory with a clean
// environment and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EXCEL_FILE", "")
	t.Setenv("METRICS_ENABLED", "false")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sample = `score,group
1,a
2,b
2,a
3,b
3,a
3,b
4,a
4,b
4,a
4,b
`

func TestFrequenciesJSON(t *testing.T) {
	path := writeCSV(t, sample)

	out, err := runCLI(t, "frequencies", "--data", path, "--vars", "score", "--stats", "mean,median", "--format", "json")
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Frequencies", report.Title)
	assert.Contains(t, report.Log, "FREQUENCIES VARIABLES=score")
	require.Len(t, report.Statistics, 2)
	assert.Equal(t, "Statistics", report.Statistics[0].Title)
	assert.Equal(t, "table", report.Statistics[1].Components)
}

func TestChiSquareText(t *testing.T) {
	path := writeCSV(t, sample)

	out, err := runCLI(t, "chi-square", "--data", path, "--vars", "score")
	require.NoError(t, err)
	lower := strings.ToLower(out)
	assert.Contains(t, lower, "chi-square test")
	assert.Contains(t, lower, "test statistics")
	assert.Contains(t, lower, "asymp. sig.")
}

func TestRunsMarkdownWithExport(t *testing.T) {
	path := writeCSV(t, sample)
	xlsx := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := runCLI(t, "runs", "--data", path, "--vars", "score", "--format", "md", "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "Runs Test")
	assert.Contains(t, out, "|")
	assert.FileExists(t, xlsx)
}

func TestValidationErrorIsReturned(t *testing.T) {
	path := writeCSV(t, sample)

	_, err := runCLI(t, "runs", "--data", path, "--vars", "score", "--cut", "custom")
	require.EqualError(t, err, "Please enter a value for the custom cut point.")
}

func TestMissingVariable(t *testing.T) {
	path := writeCSV(t, sample)

	_, err := runCLI(t, "runs", "--data", path, "--vars", "nope")
	require.Error(t, err)
}

func TestVarsRequired(t *testing.T) {
	_, err := runCLI(t, "runs", "--data", "whatever.csv")
	require.EqualError(t, err, "--vars is required")
}

func TestUnknownFormat(t *testing.T) {
	path := writeCSV(t, sample)

	_, err := runCLI(t, "runs", "--data", path, "--vars", "score", "--format", "pdf")
	require.Error(t, err)
}

func parse(t *testing.T, register func(*cobra.Command), args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestFrequenciesFlags(t *testing.T) {
	var f frequenciesFlags
	parse(t, f.register, "--stats", "mean,skewness", "--quartiles", "--ntiles", "4", "--chart", "histogram", "--normal")

	stats, err := f.statistics()
	require.NoError(t, err)
	assert.True(t, stats.CentralTendency.Mean)
	assert.True(t, stats.Distribution.Skewness)
	assert.False(t, stats.CentralTendency.Median)
	assert.True(t, stats.Percentiles.Quartiles)
	assert.True(t, stats.Percentiles.CutPoints)
	assert.Equal(t, 4, stats.Percentiles.CutPointsN)

	f.stats = []string{"bogus"}
	_, err = f.statistics()
	assert.EqualError(t, err, `unknown statistic "bogus"`)
}

func TestChiSquareFlagsRange(t *testing.T) {
	var f chiSquareFlags
	cmd := parse(t, f.register)
	opts := f.options(cmd)
	assert.True(t, opts.ExpectedRange.GetFromData)
	assert.True(t, opts.ExpectedValue.AllCategoriesEqual)

	var g chiSquareFlags
	cmd = parse(t, g.register, "--lower", "1", "--expected", "1,2,1")
	opts = g.options(cmd)
	assert.True(t, opts.ExpectedRange.UseSpecifiedRange)
	require.NotNil(t, opts.ExpectedRange.Lower)
	assert.Equal(t, 1.0, *opts.ExpectedRange.Lower)
	assert.Nil(t, opts.ExpectedRange.Upper)
	assert.False(t, opts.ExpectedValue.AllCategoriesEqual)
	assert.Equal(t, []float64{1, 2, 1}, opts.ExpectedValue.Values)
}

func TestRunsFlags(t *testing.T) {
	var f runsFlags
	cmd := parse(t, f.register, "--cut", "mean,custom", "--custom", "2.5")
	opts, err := f.options(cmd)
	require.NoError(t, err)
	assert.Equal(t, analysis.CutPoints{Mean: true, Custom: true}, opts.CutPoint)
	require.NotNil(t, opts.CustomValue)
	assert.Equal(t, 2.5, *opts.CustomValue)

	var g runsFlags
	cmd = parse(t, g.register, "--cut", "trimean")
	_, err = g.options(cmd)
	assert.Error(t, err)
}
