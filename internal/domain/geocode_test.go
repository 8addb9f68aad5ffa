package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	results map[float64]GeocodingResult // keyed by latitude
	errs    map[float64]error
	calls   int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, _ float64) (GeocodingResult, error) {
	m.calls++
	if err := m.errs[lat]; err != nil {
		return GeocodingResult{}, err
	}
	return m.results[lat], nil
}

func cameraTable() LandmarkTable {
	return LandmarkTable{
		AttributeColumns: []string{"location"},
		Rows: []Landmark{
			camera(0, 43.1, -79.4, "Bloor St W"),
			camera(1, 43.2, -79.4, "King St"),
			camera(2, 43.3, -79.4, "Queen St"),
		},
	}
}

// --- tests ---

func TestEnrichLandmarksWithPlaceNames_NilGeocoder(t *testing.T) {
	in := cameraTable()

	out, stats := EnrichLandmarksWithPlaceNames(context.Background(), in, nil, discardLogger())

	assert.Equal(t, in, out)
	assert.Zero(t, stats)
}

func TestEnrichLandmarksWithPlaceNames_AddsAttribute(t *testing.T) {
	geo := &mockGeocoder{
		results: map[float64]GeocodingResult{
			43.1: {PlaceName: "The Annex", FormattedAddress: "Bloor St W, Toronto", Confidence: 0.9},
			43.2: {PlaceName: "Liberty Village"},
		},
		errs: map[float64]error{43.3: errors.New("rate limited")},
	}
	in := cameraTable()

	out, stats := EnrichLandmarksWithPlaceNames(context.Background(), in, geo, discardLogger())

	assert.Equal(t, []string{"location", ColPlaceName}, out.AttributeColumns)
	assert.Equal(t, []string{"Bloor St W", "The Annex"}, out.Rows[0].Attrs)
	assert.Equal(t, []string{"King St", "Liberty Village"}, out.Rows[1].Attrs)
	assert.Equal(t, []string{"Queen St", ""}, out.Rows[2].Attrs, "failed lookup degrades to empty")
	assert.Equal(t, GeocodeStats{Resolved: 2, Failed: 1}, stats)
	assert.Equal(t, 3, geo.calls)

	assert.Equal(t, []string{"location"}, in.AttributeColumns, "input not modified")
	assert.Len(t, in.Rows[0].Attrs, 1)
}

func TestEnrichLandmarksWithPlaceNames_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}

	out, stats := EnrichLandmarksWithPlaceNames(context.Background(), cameraTable(), geo, discardLogger())

	assert.Equal(t, GeocodeStats{Empty: 3}, stats)
	for _, lm := range out.Rows {
		assert.Equal(t, "", lm.Attrs[1])
	}
}

func TestEnrichLandmarksWithPlaceNames_ExistingColumn(t *testing.T) {
	geo := &mockGeocoder{}
	in := cameraTable()
	in.AttributeColumns = []string{ColPlaceName}

	out, _ := EnrichLandmarksWithPlaceNames(context.Background(), in, geo, discardLogger())

	assert.Equal(t, in, out)
	assert.Zero(t, geo.calls)
}
