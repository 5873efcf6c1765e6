package data_process

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// ErrEmpty is returned when a file holds no sample.
var ErrEmpty = errors.New("no data")

// ReadAllFromCSV reads every sample of a CSV file, skipping the header line.
func ReadAllFromCSV(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot ReadAllFromCSV: %w", err)
	}
	defer file.Close()
	return parseCSV(file, true)
}

func parseCSV(r io.Reader, header bool) (*mat.Dense, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse CSV: %w", err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	return toDense(records)
}

func toDense(records [][]string) (*mat.Dense, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrEmpty
	}
	rows, cols := len(records), len(records[0])
	flat := make([]float64, 0, rows*cols)
	for i, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(record), cols)
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			flat = append(flat, v)
		}
	}
	return mat.NewDense(rows, cols, flat), nil
}

// ReadMatrixXLSX reads the numeric cells of sheet as a matrix. The sheet must be a
// full rectangle without header.
func ReadMatrixXLSX(path, sheet string) (*mat.Dense, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot ReadMatrixXLSX: %w", err)
	}
	defer f.Close()
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("cannot ReadMatrixXLSX: %w", err)
	}
	m, err := toDense(records)
	if err != nil {
		return nil, fmt.Errorf("cannot ReadMatrixXLSX: %s/%s: %w", path, sheet, err)
	}
	return m, nil
}

// WriteMatrixXLSX writes each matrix to its own sheet of a new workbook at path.
func WriteMatrixXLSX(path string, sheets map[string]mat.Matrix) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	names := maps.Keys(sheets)
	slices.Sort(names)
	for k, name := range names {
		if k == 0 {
			f.SetSheetName("Sheet1", name)
		} else if _, err = f.NewSheet(name); err != nil {
			return fmt.Errorf("cannot WriteMatrixXLSX: %w", err)
		}
		m := sheets[name]
		rows, cols := m.Dims()
		for i := 0; i < rows; i++ {
			row := make([]interface{}, cols)
			for j := range row {
				row[j] = m.At(i, j)
			}
			var cell string
			if cell, err = excelize.CoordinatesToCellName(1, i+1); err != nil {
				return fmt.Errorf("cannot WriteMatrixXLSX: %w", err)
			}
			if err = f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("cannot WriteMatrixXLSX: %w", err)
			}
		}
	}
	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("cannot WriteMatrixXLSX: %w", err)
	}
	return nil
}
