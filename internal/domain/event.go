package domain

// Point is a WGS-84 coordinate in degrees. HasLat and HasLon record which
// coordinates were present in the source row; Valid is set only when both
// were, and only a valid point takes part in the spatial join.
type Point struct {
	Lat    float64
	Lon    float64
	HasLat bool
	HasLon bool
	Valid  bool
}

// PointOf returns a valid point.
func PointOf(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon, HasLat: true, HasLon: true, Valid: true}
}

// Event is one collision row from the canonical events table.
type Event struct {
	Date     Date
	Location Point
	Severity Severity
	// Extra holds pass-through column values aligned with EventTable.ExtraColumns.
	Extra []string
}

// EventTable is the canonical events table.
type EventTable struct {
	ExtraColumns []string
	Rows         []Event
}

// DailyWeather is one row of the daily weather table. Values are aligned with
// WeatherTable.Columns; a nil entry means the amount was absent.
type DailyWeather struct {
	Date   Date
	Values []*float64
}

// WeatherTable is the canonical daily weather table, keyed by date.
type WeatherTable struct {
	Columns []string
	Rows    []DailyWeather
}

// Landmark is a fixed spatial reference point (a speed camera). ID is the
// stable load-order index.
type Landmark struct {
	ID       int
	Location Point
	// Attrs holds attribute values aligned with LandmarkTable.AttributeColumns.
	Attrs []string
}

// LandmarkTable is the canonical landmark table.
type LandmarkTable struct {
	AttributeColumns []string
	Rows             []Landmark
}

// Tables bundles the three canonical inputs of an enrichment run.
type Tables struct {
	Events    EventTable
	Weather   WeatherTable
	Landmarks LandmarkTable
}

// CoordStatus records why an event did or did not take part in the spatial join.
type CoordStatus uint8

const (
	CoordOK CoordStatus = iota
	CoordMissing
	CoordOutOfRange
)

func (s CoordStatus) String() string {
	switch s {
	case CoordOK:
		return "ok"
	case CoordMissing:
		return "missing"
	case CoordOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// WeatherFields are the temporal-join columns attached to one event.
type WeatherFields struct {
	Matched   bool
	PrecipDay bool
	// Covariates is nil for unmatched events, otherwise aligned with
	// WeatherTable.Columns.
	Covariates      []*float64
	PrecipAmountAny float64
}

// ProximityFields are the spatial-join columns attached to one event.
type ProximityFields struct {
	Status          CoordStatus
	NearestDistance *float64
	WithinThreshold bool
	LandmarkID      *int
	// LandmarkAttrs is nil when there is no nearest landmark.
	LandmarkAttrs []string
}

// EnrichedEvent is an Event with its weather and proximity fields.
type EnrichedEvent struct {
	Event
	Weather   WeatherFields
	Proximity ProximityFields
}

// EnrichedTable is the output of an enrichment run. Row i corresponds to
// input event i.
type EnrichedTable struct {
	EventColumns    []string
	WeatherColumns  []string
	LandmarkColumns []string
	LandmarkPrefix  string
	ThresholdMeters float64
	Rows            []EnrichedEvent
}
