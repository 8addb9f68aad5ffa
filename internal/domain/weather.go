package domain

import "slices"

// Amount columns that drive the precipitation flag and precip_amount_any.
// Any other weather column is carried as a covariate only.
var precipAmountColumns = []string{"precipitation", "rain", "snow"}

// Names of the derived weather columns (before the wx_ prefix). Input weather
// tables may not use them.
const (
	ColPrecipDay       = "precip_day"
	ColPrecipAmountAny = "precip_amount_any"
)

// IsPrecipAmountColumn reports whether a weather column is a precipitation
// amount. Amount columns must not be negative.
func IsPrecipAmountColumn(name string) bool {
	return slices.Contains(precipAmountColumns, name)
}

// WeatherIndex maps each date to its daily weather row.
type WeatherIndex struct {
	columns   []string
	rows      []DailyWeather
	byDate    map[Date]int
	flags     []bool
	amountAny []float64
}

// NewWeatherIndex validates the weather table and precomputes, once per day,
// the authoritative precipitation flag and the any-precipitation amount.
// A date present more than once fails with *CardinalityViolation.
func NewWeatherIndex(w WeatherTable) (*WeatherIndex, error) {
	if err := checkColumnNames("weather", w.Columns, "date", ColPrecipDay, ColPrecipAmountAny); err != nil {
		return nil, err
	}

	counts := make(map[Date]int, len(w.Rows))
	for _, row := range w.Rows {
		counts[row.Date]++
	}
	for _, row := range w.Rows {
		if n := counts[row.Date]; n > 1 {
			return nil, &CardinalityViolation{Date: row.Date, Count: n}
		}
	}

	amountIdx := amountColumnIndexes(w.Columns)
	idx := &WeatherIndex{
		columns:   w.Columns,
		rows:      w.Rows,
		byDate:    make(map[Date]int, len(w.Rows)),
		flags:     make([]bool, len(w.Rows)),
		amountAny: make([]float64, len(w.Rows)),
	}
	for i, row := range w.Rows {
		if len(row.Values) != len(w.Columns) {
			return nil, &SchemaError{Table: "weather", Column: row.Date.String(), Reason: "row arity does not match columns"}
		}
		idx.byDate[row.Date] = i
		idx.flags[i], idx.amountAny[i] = precipitation(row.Values, amountIdx)
	}
	return idx, nil
}

// Days returns the number of distinct weather dates.
func (w *WeatherIndex) Days() int {
	return len(w.byDate)
}

// Columns returns the covariate column names in input order.
func (w *WeatherIndex) Columns() []string {
	return w.columns
}

// Lookup returns the weather fields for a date. A date without a weather row
// is treated as dry: PrecipDay false, nil covariates, Matched false.
func (w *WeatherIndex) Lookup(d Date) WeatherFields {
	i, ok := w.byDate[d]
	if !ok {
		return WeatherFields{}
	}
	return WeatherFields{
		Matched:         true,
		PrecipDay:       w.flags[i],
		Covariates:      w.rows[i].Values,
		PrecipAmountAny: w.amountAny[i],
	}
}

// JoinWeather attaches weather fields to every event by date. The result is
// aligned with events.
func JoinWeather(events []Event, idx *WeatherIndex) []WeatherFields {
	out := make([]WeatherFields, len(events))
	for i := range events {
		out[i] = idx.Lookup(events[i].Date)
	}
	return out
}

// PrecipFlag reports whether any of precipitation, rain, or snow is positive
// for a weather row. Absent columns and absent values count as zero.
func PrecipFlag(columns []string, values []*float64) bool {
	flag, _ := precipitation(values, amountColumnIndexes(columns))
	return flag
}

func amountColumnIndexes(columns []string) []int {
	var idx []int
	for _, name := range precipAmountColumns {
		for i, c := range columns {
			if c == name {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// precipitation returns the flag and the max amount over the amount columns.
func precipitation(values []*float64, amountIdx []int) (bool, float64) {
	var flag bool
	var maxAmount float64
	for _, i := range amountIdx {
		if i >= len(values) || values[i] == nil {
			continue
		}
		v := *values[i]
		if v > 0 {
			flag = true
		}
		if v > maxAmount {
			maxAmount = v
		}
	}
	return flag, maxAmount
}
