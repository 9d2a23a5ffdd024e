package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// OperationTotal is the reserved operation label for derived aggregate rows.
// Source files never carry it; only the aggregator produces it.
const OperationTotal = "Total"

// DayFormat is the calendar date layout used by source files and the API.
const DayFormat = "2006-01-02"

// Day is a calendar date with an explicit missing marker. A Day that failed
// to parse stays missing instead of collapsing to the zero time, so callers
// can tell "no date" apart from any real date.
type Day struct {
	Time  time.Time
	Valid bool
}

// NewDay returns a valid Day truncated to its calendar date.
func NewDay(t time.Time) Day {
	return Day{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

// ParseDay parses a YYYY-MM-DD string. Unparseable input yields a missing
// Day, never an error.
func ParseDay(s string) Day {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}
	}
	return NewDay(t)
}

// String renders the date as YYYY-MM-DD, or empty for a missing Day.
func (d Day) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DayFormat)
}

// Equal reports whether two Days are the same calendar date. Two missing
// Days compare equal.
func (d Day) Equal(other Day) bool {
	if d.Valid != other.Valid {
		return false
	}
	return !d.Valid || d.Time.Equal(other.Time)
}

// Before reports whether d is strictly earlier than other. A missing Day is
// never before anything.
func (d Day) Before(other Day) bool {
	return d.Valid && other.Valid && d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d.Valid && other.Valid && d.Time.After(other.Time)
}

// MarshalJSON renders the date string, or null when missing.
func (d Day) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string or null.
func (d *Day) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Day{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("day must be a %s string: %w", DayFormat, err)
	}
	*d = ParseDay(s)
	if !d.Valid {
		return fmt.Errorf("invalid day %q, expected %s", s, DayFormat)
	}
	return nil
}

// Amount is a monetary quantity with an explicit missing marker. Missing
// amounts come from source values that failed numeric conversion; they
// contribute nothing to sums but remain distinguishable from a true zero.
type Amount struct {
	Float64 float64
	Valid   bool
}

// NewAmount returns a valid Amount.
func NewAmount(v float64) Amount {
	return Amount{Float64: v, Valid: true}
}

// MissingAmount is the tagged "could not parse" value.
var MissingAmount = Amount{}

// MarshalJSON renders the number, or null when missing.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Float64)
}

// UnmarshalJSON accepts a number or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("amount must be a number or null: %w", err)
	}
	*a = NewAmount(v)
	return nil
}

// TransactionRecord is one row of raw or derived transaction data. Raw rows
// come from client CSV files; Total rows are produced by the aggregator,
// exactly one per (client, date) pair present in the source data.
type TransactionRecord struct {
	Client    string  `json:"client"`
	Date      Day     `json:"date"`
	Timezone  string  `json:"timezone,omitempty"`
	Operation string  `json:"operation"`
	Volume    float64 `json:"volume"`
	Amount    Amount  `json:"amount"`
}

// IsTotal reports whether the record is a derived aggregate row.
func (r TransactionRecord) IsTotal() bool {
	return r.Operation == OperationTotal
}

// FailureNotice describes a source file that was rejected during ingestion.
type FailureNotice struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Dataset is the unioned collection of raw and derived Total records. It is
// rebuilt in full on every load cycle; there is no incremental mutation.
type Dataset struct {
	Records []TransactionRecord `json:"records"`
}

// Clients returns the sorted set of distinct client names in the dataset.
func (d Dataset) Clients() []string {
	seen := make(map[string]struct{})
	for _, r := range d.Records {
		seen[r.Client] = struct{}{}
	}
	clients := make([]string, 0, len(seen))
	for c := range seen {
		clients = append(clients, c)
	}
	sort.Strings(clients)
	return clients
}

// DateBounds returns the earliest and latest valid dates in the dataset.
// Both are missing when no record carries a valid date.
func (d Dataset) DateBounds() (min, max Day) {
	for _, r := range d.Records {
		if !r.Date.Valid {
			continue
		}
		if !min.Valid || r.Date.Before(min) {
			min = r.Date
		}
		if !max.Valid || r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max
}

// Summary holds the headline figures for a filtered dataset, computed over
// Total rows only. TotalAmount is missing when no Total row contributed a
// parseable amount, which keeps "no data" distinct from a true 0.00.
type Summary struct {
	TotalVolume float64 `json:"total_volume"`
	TotalAmount Amount  `json:"total_amount"`
}
