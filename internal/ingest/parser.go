package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"txdash/pkg/contracts/domain"
)

// Parse failure reasons surfaced through FailureNotice.
var (
	// ErrAllDatesMissing marks a file whose every row carried an
	// unparseable date. Such a file contributes nothing usable.
	ErrAllDatesMissing = errors.New("no valid dates found in file")
	// ErrNoDataRows marks a file with a header but no data rows.
	ErrNoDataRows = errors.New("file contains no data rows")
)

// columnMap holds the positions of the known columns in a file's header.
// The timezone column is optional; the two source variants disagree on it.
type columnMap struct {
	date      int
	timezone  int
	operation int
	volume    int
	amount    int
}

// ParseFile reads one client CSV file and converts its rows into
// TransactionRecords tagged with the given client name.
//
// Row-level failures are recovered in place: an amount that fails numeric
// conversion after separator stripping becomes a missing Amount, a date
// that fails to parse becomes a missing Day. Rows are never dropped.
// File-level failures (unreadable file, missing required columns, all
// dates missing) return an error and zero records.
func ParseFile(path, client string) ([]domain.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Column count differs between the two file variants.
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.TransactionRecord
	validDates := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row: %w", err)
		}
		if isBlankRow(row) {
			continue
		}

		record := domain.TransactionRecord{
			Client:    client,
			Date:      domain.ParseDay(field(row, cols.date)),
			Operation: field(row, cols.operation),
			Volume:    parseVolume(field(row, cols.volume)),
			Amount:    parseAmount(field(row, cols.amount)),
		}
		if cols.timezone >= 0 {
			record.Timezone = field(row, cols.timezone)
		}
		if record.Date.Valid {
			validDates++
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoDataRows
	}
	if validDates == 0 {
		return nil, ErrAllDatesMissing
	}

	return records, nil
}

// mapColumns locates the known columns in the header row, case-insensitively
// and order-tolerantly. Date, Operation, Volume and Amount are required;
// Timezone is optional (index -1 when absent).
func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{date: -1, timezone: -1, operation: -1, volume: -1, amount: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "timezone":
			cols.timezone = i
		case "operation":
			cols.operation = i
		case "volume":
			cols.volume = i
		case "amount":
			cols.amount = i
		}
	}

	missing := []string{}
	if cols.date < 0 {
		missing = append(missing, "Date")
	}
	if cols.operation < 0 {
		missing = append(missing, "Operation")
	}
	if cols.volume < 0 {
		missing = append(missing, "Volume")
	}
	if cols.amount < 0 {
		missing = append(missing, "Amount")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("header is missing required columns: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

// field returns the trimmed cell at index idx, or empty when the row is
// shorter than the header.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isBlankRow reports whether every cell in the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanNumber strips the formatting characters the file producers are known
// to emit (grouping commas, currency markers, stray spaces) before numeric
// conversion. Stripping always happens before validation.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	for _, symbol := range []string{"R$", "$", "€"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// parseVolume converts a volume cell to a non-negative float. Volume is
// never missing by construction: an unconvertible or negative value counts
// as zero volume rather than producing a tagged-missing field.
func parseVolume(s string) float64 {
	v, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseAmount converts an amount cell, yielding a missing Amount when the
// value cannot be parsed even after separator stripping.
func parseAmount(s string) domain.Amount {
	v, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil {
		return domain.MissingAmount
	}
	return domain.NewAmount(v)
}
