package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "valid date", in: "2024-01-10", want: Date{Year: 2024, Month: time.January, Day: 10}},
		{name: "leap day", in: "2024-02-29", want: Date{Year: 2024, Month: time.February, Day: 29}},
		{name: "not a leap year", in: "2023-02-29", wantErr: true},
		{name: "brazilian display format", in: "10/01/2024", wantErr: true},
		{name: "missing zero padding", in: "2024-1-10", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDate_Compare(t *testing.T) {
	a := MustParseDate("2024-01-10")
	b := MustParseDate("2024-01-11")
	c := MustParseDate("2025-01-01")

	assert.True(t, a.Before(b))
	assert.True(t, c.After(b))
	assert.Equal(t, 0, a.Compare(MustParseDate("2024-01-10")))
	assert.False(t, a.After(a))
}

func TestDateOf_UsesLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	instant := time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-01", DateOf(instant).String())
	assert.Equal(t, "2024-02-29", DateOf(instant.In(saoPaulo)).String())
}

func TestDate_ScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan([]byte("2024-05-17")))
	assert.Equal(t, "2024-05-17", d.String())

	require.NoError(t, d.Scan("2023-12-31"))
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", v)

	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("31/12/2023"))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-10"}`), &p))
	assert.Equal(t, MustParseDate("2024-01-10"), p.Date)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-10"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"yesterday"}`), &p))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 5}, got)
	assert.Equal(t, "09:05", got.String())

	_, err = ParseTime("25:00")
	assert.Error(t, err)

	assert.Equal(t, -1, MustParseTime("08:59").Compare(MustParseTime("09:00")))
	assert.Equal(t, 1, MustParseTime("14:01").Compare(MustParseTime("14:00")))
}

func TestYearMonth(t *testing.T) {
	assert.Equal(t, "2024-01", MustParseDate("2024-01-31").YearMonth().String())

	ym, err := ParseYearMonth("2023-11")
	require.NoError(t, err)
	assert.True(t, ym.Before(YearMonth{Year: 2023, Month: time.December}))
	assert.True(t, ym.Before(YearMonth{Year: 2024, Month: time.January}))
	assert.False(t, ym.Before(ym))

	var scanned YearMonth
	require.NoError(t, scanned.Scan("2022-07"))
	assert.Equal(t, YearMonth{Year: 2022, Month: time.July}, scanned)
}
