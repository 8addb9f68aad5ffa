package domain

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// EarthRadiusMeters is the sphere radius used by the haversine metric.
const EarthRadiusMeters = 6371000.0

// Defaults for the spatial join.
const (
	DefaultThresholdMeters = 250.0
	DefaultChunkSize       = 50000
)

// HaversineMeters returns the great-circle distance between two points given
// in degrees.
func HaversineMeters(a, b Point) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	return haversine(lat1, lon1, math.Cos(lat1), lat2, lon2, math.Cos(lat2))
}

// haversine works on radians with the latitude cosines precomputed.
func haversine(lat1, lon1, cosLat1, lat2, lon2, cosLat2 float64) float64 {
	sinDLat := math.Sin((lat2 - lat1) / 2)
	sinDLon := math.Sin((lon2 - lon1) / 2)
	h := sinDLat*sinDLat + cosLat1*cosLat2*sinDLon*sinDLon
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CoordStatusOf classifies a point for the spatial join.
func CoordStatusOf(p Point) CoordStatus {
	switch {
	case !p.Valid:
		return CoordMissing
	case math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0):
		return CoordOutOfRange
	case p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180:
		return CoordOutOfRange
	default:
		return CoordOK
	}
}

// Neighbor is the nearest landmark found for one query point. Found is false
// when the point was skipped or there are no landmarks.
type Neighbor struct {
	Found      bool
	LandmarkID int
	Distance   float64
}

// NearestFinder answers nearest-landmark queries. The result is aligned with
// the query slice. Implementations must break distance ties by lowest
// landmark ID.
type NearestFinder interface {
	Nearest(ctx context.Context, queries []Point) ([]Neighbor, error)
}

// SpatialOptions controls the brute-force search.
type SpatialOptions struct {
	ChunkSize int
	Workers   int
}

func (o SpatialOptions) withDefaults() SpatialOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// BruteForceIndex computes every query-landmark distance. Queries are split
// into fixed-size chunks that run as independent tasks; each task writes only
// its own range of the result, and landmarks are shared read-only.
type BruteForceIndex struct {
	ids    []int
	lat    []float64
	lon    []float64
	cosLat []float64
	opts   SpatialOptions

	// onChunk, when set, is called after each chunk with its size.
	onChunk func(size int)
}

// NewBruteForceIndex prepares landmarks for querying. Landmarks are scanned
// in ascending ID order so a strict less-than comparison keeps the lowest ID
// among equidistant landmarks.
func NewBruteForceIndex(landmarks []Landmark, opts SpatialOptions) (*BruteForceIndex, error) {
	sorted := slices.Clone(landmarks)
	slices.SortFunc(sorted, func(a, b Landmark) int { return a.ID - b.ID })

	ix := &BruteForceIndex{
		ids:    make([]int, len(sorted)),
		lat:    make([]float64, len(sorted)),
		lon:    make([]float64, len(sorted)),
		cosLat: make([]float64, len(sorted)),
		opts:   opts.withDefaults(),
	}
	for i, lm := range sorted {
		if i > 0 && sorted[i-1].ID == lm.ID {
			return nil, fmt.Errorf("landmark id %d is not unique", lm.ID)
		}
		if CoordStatusOf(lm.Location) != CoordOK {
			return nil, fmt.Errorf("landmark %d: invalid coordinates (%g, %g)", lm.ID, lm.Location.Lat, lm.Location.Lon)
		}
		ix.ids[i] = lm.ID
		ix.lat[i] = radians(lm.Location.Lat)
		ix.lon[i] = radians(lm.Location.Lon)
		ix.cosLat[i] = math.Cos(ix.lat[i])
	}
	return ix, nil
}

// OnChunk registers a callback invoked after every completed chunk. It may be
// called concurrently.
func (ix *BruteForceIndex) OnChunk(fn func(size int)) {
	ix.onChunk = fn
}

// Len returns the number of landmarks.
func (ix *BruteForceIndex) Len() int {
	return len(ix.ids)
}

// Nearest implements NearestFinder.
func (ix *BruteForceIndex) Nearest(ctx context.Context, queries []Point) ([]Neighbor, error) {
	out := make([]Neighbor, len(queries))
	if len(ix.ids) == 0 || len(queries) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)
	for start := 0; start < len(queries); start += ix.opts.ChunkSize {
		end := min(start+ix.opts.ChunkSize, len(queries))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ix.nearestChunk(queries[start:end], out[start:end])
			if ix.onChunk != nil {
				ix.onChunk(end - start)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nearest landmark search: %w", err)
	}
	return out, nil
}

func (ix *BruteForceIndex) nearestChunk(queries []Point, out []Neighbor) {
	for i, q := range queries {
		if CoordStatusOf(q) != CoordOK {
			continue
		}
		lat1, lon1 := radians(q.Lat), radians(q.Lon)
		cosLat1 := math.Cos(lat1)

		best, bestDist := -1, math.Inf(1)
		for j := range ix.ids {
			d := haversine(lat1, lon1, cosLat1, ix.lat[j], ix.lon[j], ix.cosLat[j])
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			out[i] = Neighbor{Found: true, LandmarkID: ix.ids[best], Distance: bestDist}
		}
	}
}
