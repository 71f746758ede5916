package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// sheetReplacer drops the characters Excel forbids in sheet names.
var sheetReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

var workbookHeaders = []string{"Month", "Label", "Average price", "Source"}

// WriteYearWorkbook writes the chart view of series as an XLSX workbook:
// one row per month, with an empty price cell where no value resolved.
func WriteYearWorkbook(w io.Writer, series domain.YearSeries) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(series)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range workbookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "D", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for i, v := range series.Chart() {
		row := i + 2
		values := []interface{}{int(v.Month), v.Label, nil, ""}
		if v.HasValue() {
			values[2] = *v.Price
			values[3] = source(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write month %d: %w", v.Month, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func sheetName(series domain.YearSeries) string {
	name := sheetReplacer.Replace(fmt.Sprintf("%d %s", series.Year, series.Key.Commodity))
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	return strings.Trim(name, "' ")
}

func source(v domain.MonthValue) string {
	if v.IsForecast {
		return "forecast"
	}
	return "history"
}
