// Package reference reads bundled price reference data from CSV or XLSX
// files. Rows are returned as received; validation happens on ingestion.
package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/xuri/excelize/v2"
)

const SourceReference = "reference"

var columnAliases = map[string]string{
	"commodity":     "commodity",
	"item":          "commodity",
	"specification": "specification",
	"spec":          "specification",
	"variety":       "specification",
	"price":         "price",
	"amount":        "price",
	"date":          "date",
	"observed_on":   "date",
	"region":        "region",
	"location":      "region",
}

var requiredColumns = []string{"commodity", "price", "date"}

// ReadFile dispatches on the file extension.
func ReadFile(path string) ([]store.ObservationRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open reference file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open reference workbook: %w", err)
		}
		defer f.Close()
		return ReadWorkbook(f)
	default:
		return nil, fmt.Errorf("unsupported reference file type %q", filepath.Ext(path))
	}
}

func ReadCSV(r io.Reader) ([]store.ObservationRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// ReadWorkbook reads the first sheet of f.
func ReadWorkbook(f *excelize.File) ([]store.ObservationRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]store.ObservationRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]store.ObservationRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, store.ObservationRecord{
			Commodity:     cell(row, index, "commodity"),
			Specification: cell(row, index, "specification"),
			Price:         parsePrice(cell(row, index, "price")),
			ObservedOn:    cell(row, index, "date"),
			Region:        cell(row, index, "region"),
			Source:        SourceReference,
		})
	}
	return records, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, name := range header {
		col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return index, nil
}

func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parsePrice returns 0 for unparsable values so the row is rejected on
// ingestion together with other invalid observations.
func parsePrice(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
