package domain

import (
	"context"
	"fmt"
)

// DefaultLandmarkPrefix prefixes nearest-landmark attribute columns.
const DefaultLandmarkPrefix = "cam_"

// EnrichOptions configures Enrich.
type EnrichOptions struct {
	ThresholdMeters float64
	LandmarkPrefix  string
}

func (o EnrichOptions) withDefaults() EnrichOptions {
	if o.ThresholdMeters <= 0 {
		o.ThresholdMeters = DefaultThresholdMeters
	}
	if o.LandmarkPrefix == "" {
		o.LandmarkPrefix = DefaultLandmarkPrefix
	}
	return o
}

// Enrich runs the temporal join and then the spatial join over the same
// events and assembles the enriched table. The two joins write disjoint
// fields, so their order does not affect the result. Inputs are not modified.
func Enrich(ctx context.Context, t Tables, finder NearestFinder, opts EnrichOptions) (EnrichedTable, error) {
	opts = opts.withDefaults()

	if err := checkColumnNames("events", t.Events.ExtraColumns, "date", "lat", "lon", "severity", ColEventID); err != nil {
		return EnrichedTable{}, err
	}
	if err := checkColumnNames("landmarks", t.Landmarks.AttributeColumns, "lat", "lon"); err != nil {
		return EnrichedTable{}, err
	}

	weather, err := NewWeatherIndex(t.Weather)
	if err != nil {
		return EnrichedTable{}, fmt.Errorf("temporal join: %w", err)
	}
	events := t.Events.Rows
	wx := JoinWeather(events, weather)

	queries := make([]Point, len(events))
	for i := range events {
		queries[i] = events[i].Location
	}
	neighbors, err := finder.Nearest(ctx, queries)
	if err != nil {
		return EnrichedTable{}, fmt.Errorf("spatial join: %w", err)
	}
	if len(neighbors) != len(events) {
		return EnrichedTable{}, fmt.Errorf("spatial join: %d results for %d events", len(neighbors), len(events))
	}

	attrsByID := make(map[int][]string, len(t.Landmarks.Rows))
	for _, lm := range t.Landmarks.Rows {
		attrsByID[lm.ID] = lm.Attrs
	}

	rows := make([]EnrichedEvent, len(events))
	for i := range events {
		prox := ProximityFields{Status: CoordStatusOf(events[i].Location)}
		if n := neighbors[i]; n.Found && prox.Status == CoordOK {
			attrs, ok := attrsByID[n.LandmarkID]
			if !ok {
				return EnrichedTable{}, fmt.Errorf("spatial join: unknown landmark id %d", n.LandmarkID)
			}
			dist, id := n.Distance, n.LandmarkID
			prox.NearestDistance = &dist
			prox.LandmarkID = &id
			prox.LandmarkAttrs = attrs
			prox.WithinThreshold = dist <= opts.ThresholdMeters
		}
		rows[i] = EnrichedEvent{Event: events[i], Weather: wx[i], Proximity: prox}
	}

	return EnrichedTable{
		EventColumns:    t.Events.ExtraColumns,
		WeatherColumns:  weather.Columns(),
		LandmarkColumns: t.Landmarks.AttributeColumns,
		LandmarkPrefix:  opts.LandmarkPrefix,
		ThresholdMeters: opts.ThresholdMeters,
		Rows:            rows,
	}, nil
}
