package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		want  string
	}{
		{name: "valid date", input: "2024-01-15", valid: true, want: "2024-01-15"},
		{name: "invalid format", input: "15/01/2024", valid: false},
		{name: "garbage", input: "not-a-date", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "impossible date", input: "2024-02-30", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDay(tt.input)
			assert.Equal(t, tt.valid, d.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, d.String())
			} else {
				assert.Empty(t, d.String())
			}
		})
	}
}

func TestDayComparisons(t *testing.T) {
	jan1 := ParseDay("2024-01-01")
	jan2 := ParseDay("2024-01-02")
	missing := Day{}

	assert.True(t, jan1.Before(jan2))
	assert.True(t, jan2.After(jan1))
	assert.False(t, missing.Before(jan1), "missing day is never inside a range")
	assert.False(t, jan1.Before(missing))
	assert.True(t, jan1.Equal(ParseDay("2024-01-01")))
	assert.True(t, missing.Equal(Day{}))
	assert.False(t, missing.Equal(jan1))
}

func TestDayJSON(t *testing.T) {
	data, err := json.Marshal(NewDay(time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(data))

	data, err = json.Marshal(Day{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var d Day
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &d))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.False(t, d.Valid)

	assert.Error(t, json.Unmarshal([]byte(`"03/05/2024"`), &d))
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(NewAmount(150.5))
	require.NoError(t, err)
	assert.Equal(t, "150.5", string(data))

	data, err = json.Marshal(MissingAmount)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data), "missing amount must not render as zero")

	var a Amount
	require.NoError(t, json.Unmarshal([]byte("null"), &a))
	assert.False(t, a.Valid)
	require.NoError(t, json.Unmarshal([]byte("42"), &a))
	assert.True(t, a.Valid)
	assert.Equal(t, 42.0, a.Float64)
}

func TestDatasetClientsAndBounds(t *testing.T) {
	ds := Dataset{Records: []TransactionRecord{
		{Client: "beta", Date: ParseDay("2024-01-10")},
		{Client: "alpha", Date: ParseDay("2024-01-05")},
		{Client: "alpha", Date: Day{}},
		{Client: "beta", Date: ParseDay("2024-02-01")},
	}}

	assert.Equal(t, []string{"alpha", "beta"}, ds.Clients())

	min, max := ds.DateBounds()
	assert.Equal(t, "2024-01-05", min.String())
	assert.Equal(t, "2024-02-01", max.String())
}

func TestDatasetBoundsAllMissing(t *testing.T) {
	ds := Dataset{Records: []TransactionRecord{{Client: "a"}, {Client: "b"}}}
	min, max := ds.DateBounds()
	assert.False(t, min.Valid)
	assert.False(t, max.Valid)
}

func TestIsTotal(t *testing.T) {
	assert.True(t, TransactionRecord{Operation: OperationTotal}.IsTotal())
	assert.False(t, TransactionRecord{Operation: "deposit"}.IsTotal())
}
