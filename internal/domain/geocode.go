package domain

import (
	"context"
	"log/slog"
	"slices"
)

// ColPlaceName is the landmark attribute added by reverse geocoding.
const ColPlaceName = "place_name"

// GeocodingResult is what a provider knows about a coordinate.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // provider relevance, 0 to 1
}

// Geocoder looks up the place at a coordinate. An empty PlaceName with a nil
// error means the provider has nothing there.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// GeocodeStats counts reverse-geocoding outcomes over a landmark table.
type GeocodeStats struct {
	Resolved int
	Empty    int
	Failed   int
}

// EnrichLandmarksWithPlaceNames reverse-geocodes every landmark and stores
// the place name as an attribute. A failed or empty lookup leaves the
// attribute empty; geocoding never fails the run. If geocoder is nil or the
// table already has a place_name column, the table is returned unchanged.
// The input table is not modified.
func EnrichLandmarksWithPlaceNames(ctx context.Context, table LandmarkTable, geocoder Geocoder, logger *slog.Logger) (LandmarkTable, GeocodeStats) {
	var stats GeocodeStats
	if geocoder == nil || slices.Contains(table.AttributeColumns, ColPlaceName) {
		return table, stats
	}

	out := LandmarkTable{
		AttributeColumns: append(slices.Clip(table.AttributeColumns), ColPlaceName),
		Rows:             make([]Landmark, len(table.Rows)),
	}
	for i, lm := range table.Rows {
		name := ""
		result, err := geocoder.ReverseGeocode(ctx, lm.Location.Lat, lm.Location.Lon)
		switch {
		case err != nil:
			logger.Warn("reverse geocoding failed",
				"landmark_id", lm.ID,
				"lat", lm.Location.Lat,
				"lon", lm.Location.Lon,
				"error", err,
			)
			stats.Failed++
		case result.PlaceName == "":
			stats.Empty++
		default:
			name = result.PlaceName
			stats.Resolved++
		}
		lm.Attrs = append(slices.Clip(lm.Attrs), name)
		out.Rows[i] = lm
	}
	return out, stats
}
