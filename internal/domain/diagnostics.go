package domain

// Diagnostics summarizes an enrichment run. It is derived from the inputs and
// the enriched table only, so identical runs produce identical diagnostics.
type Diagnostics struct {
	Events           int              `json:"events"`
	WeatherDays      int              `json:"weather_days"`
	Landmarks        int              `json:"landmarks"`
	WeatherMatched   int              `json:"weather_matched"`
	WeatherUnmatched int              `json:"weather_unmatched"`
	PrecipDay        int              `json:"precip_day"`
	DryDay           int              `json:"dry_day"`
	WithinThreshold  int              `json:"within_threshold"`
	OutsideThreshold int              `json:"outside_threshold"`
	CoordsOK         int              `json:"coords_ok"`
	CoordsMissing    int              `json:"coords_missing"`
	CoordsOutOfRange int              `json:"coords_out_of_range"`
	BySeverity       map[Severity]int `json:"by_severity"`
	Warnings         []string         `json:"warnings,omitempty"`
}

// Diagnose counts matched weather rows, flag distributions and coordinate
// statuses.
func Diagnose(in Tables, out EnrichedTable) Diagnostics {
	days := make(map[Date]struct{}, len(in.Weather.Rows))
	for _, w := range in.Weather.Rows {
		days[w.Date] = struct{}{}
	}

	d := Diagnostics{
		Events:      len(out.Rows),
		WeatherDays: len(days),
		Landmarks:   len(in.Landmarks.Rows),
		BySeverity:  make(map[Severity]int, 2),
	}
	for i := range out.Rows {
		r := &out.Rows[i]
		if r.Weather.Matched {
			d.WeatherMatched++
		} else {
			d.WeatherUnmatched++
		}
		if r.Weather.PrecipDay {
			d.PrecipDay++
		} else {
			d.DryDay++
		}
		if r.Proximity.WithinThreshold {
			d.WithinThreshold++
		} else {
			d.OutsideThreshold++
		}
		switch r.Proximity.Status {
		case CoordOK:
			d.CoordsOK++
		case CoordMissing:
			d.CoordsMissing++
		case CoordOutOfRange:
			d.CoordsOutOfRange++
		}
		d.BySeverity[r.Severity]++
	}
	if d.Landmarks == 0 {
		d.Warnings = append(d.Warnings, WarnEmptyLandmarkSet)
	}
	return d
}
