// Package exporter renders a filtered dataset as a downloadable file. CSV
// output carries a UTF-8 BOM so spreadsheet applications detect the encoding.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"txdash/pkg/contracts/domain"
)

// utf8BOM prefixes CSV exports for spreadsheet compatibility.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingCell is how a missing amount or date renders in exports. Exports
// are for humans; JSON null has no spreadsheet equivalent.
const missingCell = "N/A"

// exportHeader is the column order for both CSV and XLSX exports.
var exportHeader = []string{"Client", "Date", "Operation", "Timezone", "Volume", "Amount"}

// WriteCSV writes the dataset to w as RFC 4180 CSV with a UTF-8 BOM.
func WriteCSV(w io.Writer, ds domain.Dataset) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range ds.Records {
		if err := cw.Write(recordRow(r)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// recordRow renders one record as export cells, shared by CSV and XLSX.
func recordRow(r domain.TransactionRecord) []string {
	date := missingCell
	if r.Date.Valid {
		date = r.Date.String()
	}
	amount := missingCell
	if r.Amount.Valid {
		amount = strconv.FormatFloat(r.Amount.Float64, 'f', 2, 64)
	}
	return []string{
		r.Client,
		date,
		r.Operation,
		r.Timezone,
		strconv.FormatFloat(r.Volume, 'f', -1, 64),
		amount,
	}
}
