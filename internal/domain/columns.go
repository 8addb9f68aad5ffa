package domain

// WeatherPrefix marks columns that came from the daily weather table.
const WeatherPrefix = "wx_"

// ColEventID names the deterministic event key that sinks attach to each
// row. It is reserved so no output column can shadow it.
const ColEventID = "event_id"

// Spatial output column names.
const (
	ColNearestDistance = "nearest_distance_m"
	ColWithinThreshold = "within_threshold"
	ColNearestID       = "nearest_landmark_id"
)

// ColumnKind is the logical type of an output column.
type ColumnKind uint8

const (
	KindDate ColumnKind = iota
	KindFloat
	KindFlag
	KindInt
	KindString
)

// Column describes one output column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Columns returns the output schema in its fixed order: event columns, then
// wx_-prefixed weather columns, then spatial columns.
func (t *EnrichedTable) Columns() []Column {
	cols := make([]Column, 0, 4+len(t.EventColumns)+len(t.WeatherColumns)+2+3+len(t.LandmarkColumns))
	cols = append(cols,
		Column{Name: "date", Kind: KindDate},
		Column{Name: "lat", Kind: KindFloat},
		Column{Name: "lon", Kind: KindFloat},
		Column{Name: "severity", Kind: KindString},
	)
	for _, c := range t.EventColumns {
		cols = append(cols, Column{Name: c, Kind: KindString})
	}
	for _, c := range t.WeatherColumns {
		cols = append(cols, Column{Name: WeatherPrefix + c, Kind: KindFloat})
	}
	cols = append(cols,
		Column{Name: WeatherPrefix + ColPrecipDay, Kind: KindFlag},
		Column{Name: WeatherPrefix + ColPrecipAmountAny, Kind: KindFloat},
		Column{Name: ColNearestDistance, Kind: KindFloat},
		Column{Name: ColWithinThreshold, Kind: KindFlag},
		Column{Name: ColNearestID, Kind: KindInt},
	)
	for _, c := range t.LandmarkColumns {
		cols = append(cols, Column{Name: t.LandmarkPrefix + c, Kind: KindString})
	}
	return cols
}

// Values returns row i as typed cells aligned with Columns. Cells are Date,
// float64, bool, int64, string, or nil for an absent value.
func (t *EnrichedTable) Values(i int) []any {
	r := &t.Rows[i]
	vals := make([]any, 0, 4+len(t.EventColumns)+len(t.WeatherColumns)+5+len(t.LandmarkColumns))

	vals = append(vals, r.Date)
	vals = append(vals, coordCell(r.Location.Lat, r.Location.HasLat), coordCell(r.Location.Lon, r.Location.HasLon))
	vals = append(vals, string(r.Severity))
	for j := range t.EventColumns {
		vals = append(vals, r.Extra[j])
	}

	for j := range t.WeatherColumns {
		if r.Weather.Covariates == nil || r.Weather.Covariates[j] == nil {
			vals = append(vals, nil)
			continue
		}
		vals = append(vals, *r.Weather.Covariates[j])
	}
	vals = append(vals, r.Weather.PrecipDay, r.Weather.PrecipAmountAny)

	if r.Proximity.NearestDistance != nil {
		vals = append(vals, *r.Proximity.NearestDistance)
	} else {
		vals = append(vals, nil)
	}
	vals = append(vals, r.Proximity.WithinThreshold)
	if r.Proximity.LandmarkID != nil {
		vals = append(vals, int64(*r.Proximity.LandmarkID))
	} else {
		vals = append(vals, nil)
	}
	for j := range t.LandmarkColumns {
		if r.Proximity.LandmarkAttrs == nil {
			vals = append(vals, nil)
			continue
		}
		vals = append(vals, r.Proximity.LandmarkAttrs[j])
	}
	return vals
}

func coordCell(v float64, present bool) any {
	if !present {
		return nil
	}
	return v
}
