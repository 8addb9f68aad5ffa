package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinWeather_PrecipFlagByDate(t *testing.T) {
	w := WeatherTable{
		Columns: []string{"precipitation"},
		Rows:    []DailyWeather{{Date: day(1), Values: []*float64{f64(5.0)}}},
	}
	idx, err := NewWeatherIndex(w)
	require.NoError(t, err)

	got := JoinWeather([]Event{event(day(1), 0, 0), event(day(2), 0, 0)}, idx)

	require.Len(t, got, 2)
	assert.True(t, got[0].Matched)
	assert.True(t, got[0].PrecipDay)
	assert.Equal(t, 5.0, got[0].PrecipAmountAny)
	assert.Equal(t, []*float64{f64(5.0)}, got[0].Covariates)

	assert.False(t, got[1].Matched)
	assert.False(t, got[1].PrecipDay, "a day with no weather row is dry")
	assert.Nil(t, got[1].Covariates)
	assert.Zero(t, got[1].PrecipAmountAny)
}

func TestNewWeatherIndex_DuplicateDate(t *testing.T) {
	w := WeatherTable{
		Columns: []string{"precipitation"},
		Rows: []DailyWeather{
			{Date: day(1), Values: []*float64{f64(0)}},
			{Date: day(2), Values: []*float64{f64(1)}},
			{Date: day(1), Values: []*float64{f64(2)}},
		},
	}
	_, err := NewWeatherIndex(w)

	var cv *CardinalityViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, day(1), cv.Date)
	assert.Equal(t, 2, cv.Count)
	assert.Contains(t, err.Error(), "2020-01-01")
}

func TestNewWeatherIndex_SchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"reserved flag", []string{"precip_day"}},
		{"reserved amount", []string{"rain", "precip_amount_any"}},
		{"duplicate", []string{"rain", "rain"}},
		{"empty", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeatherIndex(WeatherTable{Columns: tt.columns})
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestNewWeatherIndex_RowArity(t *testing.T) {
	w := WeatherTable{
		Columns: []string{"rain", "snow"},
		Rows:    []DailyWeather{{Date: day(1), Values: []*float64{f64(1)}}},
	}
	_, err := NewWeatherIndex(w)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "weather", se.Table)
}

func TestPrecipFlag(t *testing.T) {
	cols := []string{"precipitation", "rain", "snow", "temperature_max"}
	tests := []struct {
		name   string
		values []*float64
		want   bool
	}{
		{"all zero", []*float64{f64(0), f64(0), f64(0), f64(30)}, false},
		{"rain only", []*float64{f64(0), f64(0.2), f64(0), f64(5)}, true},
		{"snow only", []*float64{nil, nil, f64(1.5), nil}, true},
		{"all absent", []*float64{nil, nil, nil, f64(12)}, false},
		{"covariate ignored", []*float64{f64(0), f64(0), f64(0), f64(99)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrecipFlag(cols, tt.values))
		})
	}
}

func TestPrecipFlag_NoAmountColumns(t *testing.T) {
	assert.False(t, PrecipFlag([]string{"temperature_max"}, []*float64{f64(20)}))
}

func TestWeatherIndex_PrecipAmountAnyIsMax(t *testing.T) {
	w := WeatherTable{
		Columns: []string{"snow", "temperature_min", "rain", "precipitation"},
		Rows:    []DailyWeather{{Date: day(3), Values: []*float64{f64(2.5), f64(-40), f64(1.0), nil}}},
	}
	idx, err := NewWeatherIndex(w)
	require.NoError(t, err)

	got := idx.Lookup(day(3))
	assert.True(t, got.PrecipDay)
	assert.Equal(t, 2.5, got.PrecipAmountAny)
	assert.Equal(t, 1, idx.Days())
	assert.Equal(t, w.Columns, idx.Columns())
}
