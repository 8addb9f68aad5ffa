package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Date
	}{
		{"plain", "2020-01-01", DateOf(2020, time.January, 1)},
		{"padded", "  2021-07-15 ", DateOf(2021, time.July, 15)},
		{"iso timestamp", "2020-03-02T08:30:00", DateOf(2020, time.March, 2)},
		{"space timestamp", "2020-03-02 23:59:59", DateOf(2020, time.March, 2)},
		{"leap day", "2024-02-29", DateOf(2024, time.February, 29)},
		{"before epoch", "1969-12-31", DateOf(1969, time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2020-13-01", "01/02/2020", "2023-02-29", "yesterday"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseDate(s)
			assert.Error(t, err)
		})
	}
}

func TestDate_RoundTrip(t *testing.T) {
	d := DateOf(2020, time.January, 2)
	assert.Equal(t, "2020-01-02", d.String())
	assert.Equal(t, d+1, DateOf(2020, time.January, 3))
	assert.Equal(t, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC), d.Time())
	assert.Equal(t, "1969-12-31", DateOf(1969, time.December, 31).String())
}

func TestDateFromTime_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2020, time.January, 1, 23, 0, 0, 0, loc) // 04:00 UTC on Jan 2
	assert.Equal(t, DateOf(2020, time.January, 1), DateFromTime(ts))
}
