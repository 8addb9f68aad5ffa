package domain

import (
	"fmt"
	"math"
)

// Validate checks the enriched table against its input before anything is
// written. Every violation is fatal; nothing is coerced.
func Validate(in Tables, out EnrichedTable) error {
	if got, want := len(out.Rows), len(in.Events.Rows); got != want {
		return &ValidationError{Check: "row_count", Row: -1, Detail: fmt.Sprintf("output has %d rows, input has %d events", got, want)}
	}

	seen := map[string]struct{}{ColEventID: {}}
	for _, c := range out.Columns() {
		if _, dup := seen[c.Name]; dup {
			return &ValidationError{Check: "columns", Row: -1, Detail: fmt.Sprintf("output column %q appears twice", c.Name)}
		}
		seen[c.Name] = struct{}{}
	}

	for i := range out.Rows {
		if err := validateRow(&out, i, &in.Events.Rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateRow(t *EnrichedTable, i int, src *Event) error {
	r := &t.Rows[i]
	fail := func(check, format string, args ...any) error {
		return &ValidationError{Check: check, Row: i, Detail: fmt.Sprintf(format, args...)}
	}

	if r.Date != src.Date || r.Severity != src.Severity || r.Location != src.Location {
		return fail("identity", "row does not match input event %d", i)
	}
	if len(r.Extra) != len(t.EventColumns) {
		return fail("arity", "%d pass-through values for %d columns", len(r.Extra), len(t.EventColumns))
	}

	w := r.Weather
	if !w.Matched {
		if w.PrecipDay || w.Covariates != nil || w.PrecipAmountAny != 0 {
			return fail("weather", "unmatched row carries weather values")
		}
	} else if len(w.Covariates) != len(t.WeatherColumns) {
		return fail("arity", "%d weather values for %d columns", len(w.Covariates), len(t.WeatherColumns))
	}
	if math.IsNaN(w.PrecipAmountAny) || math.IsInf(w.PrecipAmountAny, 0) || w.PrecipAmountAny < 0 {
		return fail("precip_amount_any", "invalid amount %g", w.PrecipAmountAny)
	}

	p := r.Proximity
	if p.Status != CoordStatusOf(r.Location) {
		return fail("coord_status", "status %s does not match coordinates", p.Status)
	}
	if p.NearestDistance == nil {
		if p.WithinThreshold || p.LandmarkID != nil || p.LandmarkAttrs != nil {
			return fail("proximity", "absent distance with proximity values set")
		}
		return nil
	}
	if p.Status != CoordOK {
		return fail("proximity", "distance set for %s coordinates", p.Status)
	}
	d := *p.NearestDistance
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fail("nearest_distance_m", "invalid distance %g", d)
	}
	if p.WithinThreshold != (d <= t.ThresholdMeters) {
		return fail("within_threshold", "flag %t disagrees with distance %g and threshold %g", p.WithinThreshold, d, t.ThresholdMeters)
	}
	if p.LandmarkID == nil {
		return fail("nearest_landmark_id", "distance set without landmark id")
	}
	if len(p.LandmarkAttrs) != len(t.LandmarkColumns) {
		return fail("arity", "%d landmark attributes for %d columns", len(p.LandmarkAttrs), len(t.LandmarkColumns))
	}
	return nil
}
