package excel

import (
	"os"
	"path/filepath"
	"testing"

	"gostatcore/domain/table"
	"gostatcore/domain/variable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadData_CSVInfersVariables(t *testing.T) {
	path := writeCSV(t, "score,city,visit\n"+
		"1.25,Oslo,2024-01-15\n"+
		"2.5,Bergen,2024-02-01\n"+
		",Oslo,\n"+
		"4,,2024-03-10\n")

	ds, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	require.Len(t, ds.Variables, 3)
	assert.Equal(t, 4, ds.Cases)

	score := ds.Variables[0]
	assert.Equal(t, variable.TypeNumeric, score.Type)
	assert.Equal(t, variable.MeasureScale, score.Measure)
	assert.Equal(t, 2, score.Decimals)
	assert.Equal(t, []any{1.25, 2.5, nil, 4.0}, ds.Columns[0])

	city := ds.Variables[1]
	assert.Equal(t, variable.TypeString, city.Type)
	assert.Equal(t, variable.MeasureNominal, city.Measure)
	assert.Equal(t, []any{"Oslo", "Bergen", "Oslo", nil}, ds.Columns[1])

	visit := ds.Variables[2]
	assert.Equal(t, variable.TypeDate, visit.Type)
	assert.Equal(t, 2, visit.ColumnIndex)
	assert.IsType(t, float64(0), ds.Columns[2][0])
	assert.Nil(t, ds.Columns[2][2])
}

func TestReadData_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).ReadData()
	assert.ErrorContains(t, err, "CSV file not found")

	_, err = NewDataReader(writeCSV(t, "only,header\n")).ReadData()
	assert.ErrorContains(t, err, "at least a header row and one data row")
}

func TestReadData_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"group", "label"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "a"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "b"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	vd, ok := ds.Variable("GROUP")
	require.True(t, ok)
	assert.Equal(t, variable.TypeNumeric, vd.Variable.Type)
	assert.Equal(t, []any{1.0, 2.0}, vd.Data)

	selected, err := ds.Select([]string{"label", "group"})
	require.NoError(t, err)
	assert.Equal(t, "label", selected[0].Variable.Name)

	_, err = ds.Select([]string{"nope"})
	assert.Error(t, err)
}

func TestInferVariable_LowCardinalityCodesAreNominal(t *testing.T) {
	raw := make([]string, 100)
	for i := range raw {
		raw[i] = []string{"1", "2", "3"}[i%3]
	}
	v := inferVariable("code", raw)
	assert.Equal(t, variable.TypeNumeric, v.Type)
	assert.Equal(t, variable.MeasureNominal, v.Measure)
}

func TestWriteWorkbook(t *testing.T) {
	freq := table.FormattedTable{
		Title: "score",
		ColumnHeaders: []table.ColumnHeader{
			{Header: "", Key: "rowHeader"},
			{Header: "Frequency", Key: "frequency"},
		},
		Rows: []table.Row{
			table.NewRow("Valid").Set("frequency", 3.0),
		},
		Footer: "a. note",
	}
	freq.Rows[0].Children = []table.Row{table.NewRow(nil, "1").Set("frequency", 3.0)}
	stats := table.FormattedTable{Title: "Test Statistics: chi/square", ColumnHeaders: []table.ColumnHeader{{Key: "rowHeader"}}}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteWorkbook(path, []table.FormattedTable{freq, stats}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"1 score", "2 Test Statistics  chi square"}, f.GetSheetList())
	rows, err := f.GetRows("1 score")
	require.NoError(t, err)
	assert.Equal(t, []string{"score"}, rows[0])
	assert.Equal(t, []string{"", "Frequency"}, rows[1])
	assert.Equal(t, []string{"Valid", "3"}, rows[2])
	assert.Equal(t, []string{"  1", "3"}, rows[3])
	assert.Equal(t, []string{"a. note"}, rows[4])

	assert.Error(t, WriteWorkbook(path, nil))
}
