package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gostatcore/domain/variable"
	"gostatcore/internal"
	"gostatcore/internal/format"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Sheet1"

	// integer columns with at most this many distinct codes are nominal
	maxCategoricalCodes = 20
	maxSampleSize       = 500
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.With("DataReader"),
	}
}

// ReadData reads the file and infers one variable per column
func (r *DataReader) ReadData() (*Dataset, error) {
	r.logger.Info("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.fileType, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	ds := processRows(rows)
	r.logger.Info("%s file processed (%d columns, %d cases)", strings.ToUpper(r.fileType), len(ds.Variables), ds.Cases)
	return ds, nil
}

// readExcelRows reads Sheet1
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheetName, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows turns the header row into variables and the remaining rows
// into typed columns. Blank cells become system-missing (nil).
func processRows(rows [][]string) *Dataset {
	headers := rows[0]
	cases := rows[1:]
	ds := &Dataset{Cases: len(cases)}

	for col, header := range headers {
		name := strings.TrimSpace(header)
		if name == "" {
			name = fmt.Sprintf("VAR%05d", col+1)
		}
		raw := make([]string, len(cases))
		for i, row := range cases {
			if col < len(row) {
				raw[i] = strings.TrimSpace(row[col])
			}
		}

		v := inferVariable(name, raw)
		v.ColumnIndex = col
		ds.Variables = append(ds.Variables, v)
		ds.Columns = append(ds.Columns, convertColumn(v, raw))
	}
	return ds
}

// inferVariable decides type, measure and decimals from a stratified sample
// of the column's non-blank cells.
func inferVariable(name string, raw []string) variable.Variable {
	v := variable.Variable{Name: name, Type: variable.TypeString, Measure: variable.MeasureNominal}

	var numeric, dates, valid, decimals int
	integers := true
	unique := make(map[string]bool)
	for _, idx := range stratifiedSample(len(raw), maxSampleSize) {
		cell := raw[idx]
		if cell == "" {
			continue
		}
		valid++
		unique[cell] = true
		if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			numeric++
			if f != math.Trunc(f) {
				integers = false
			}
			if d := decimalPlaces(cell); d > decimals {
				decimals = d
			}
			continue
		}
		if _, ok := format.ParseDate(cell); ok {
			dates++
		}
	}

	switch {
	case valid == 0:
		v.Type, v.Measure = variable.TypeNumeric, variable.MeasureUnknown
	case numeric == valid:
		v.Type, v.Decimals = variable.TypeNumeric, decimals
		v.Measure = variable.MeasureScale
		if integers && len(unique) <= maxCategoricalCodes && float64(len(unique)) < 0.1*float64(valid) {
			v.Measure = variable.MeasureNominal
		}
	case dates == valid:
		v.Type, v.Measure = variable.TypeDate, variable.MeasureScale
	}
	return v
}

func convertColumn(v variable.Variable, raw []string) []any {
	out := make([]any, len(raw))
	for i, cell := range raw {
		if cell == "" {
			continue
		}
		switch v.Type {
		case variable.TypeNumeric:
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				out[i] = f
			}
		case variable.TypeDate:
			if secs, ok := format.ParseDate(cell); ok {
				out[i] = secs
			}
		default:
			out[i] = cell
		}
	}
	return out
}

func decimalPlaces(cell string) int {
	if i := strings.IndexAny(cell, "eE"); i >= 0 {
		cell = cell[:i]
	}
	i := strings.IndexByte(cell, '.')
	if i < 0 {
		return 0
	}
	return min(len(cell)-i-1, 16)
}

// stratifiedSample returns evenly distributed row indices across the dataset
func stratifiedSample(totalRows, sampleSize int) []int {
	if sampleSize >= totalRows {
		indices := make([]int, totalRows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	indices := make([]int, 0, sampleSize)
	step := float64(totalRows) / float64(sampleSize)
	for i := 0; i < sampleSize; i++ {
		if idx := int(float64(i) * step); idx < totalRows {
			indices = append(indices, idx)
		}
	}
	return indices
}
