package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"txdash/pkg/contracts/domain"
)

const sheetName = "Transactions"

// WriteXLSX writes the dataset to w as an XLSX workbook with one sheet.
// Numeric cells stay numeric so spreadsheet formulas work on the export;
// missing amounts render as the N/A marker.
func WriteXLSX(w io.Writer, ds domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, r := range ds.Records {
		row := i + 2
		values := []interface{}{
			r.Client,
			cellDate(r.Date),
			r.Operation,
			r.Timezone,
			r.Volume,
			cellAmount(r.Amount),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("row %d cell: %w", row, err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellDate(d domain.Day) interface{} {
	if !d.Valid {
		return missingCell
	}
	return d.String()
}

func cellAmount(a domain.Amount) interface{} {
	if !a.Valid {
		return missingCell
	}
	return a.Float64
}
