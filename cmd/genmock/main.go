// Command genmock writes deterministic synthetic canonical inputs (events,
// daily weather, and speed cameras) for local runs of cmd/enrich.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data_clean -events 5000 -cameras 50
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

var baseDate = domain.DateOf(2020, time.January, 1)

// Bounding box the synthetic points are drawn from.
const (
	minLat, maxLat = 43.58, 43.85
	minLon, maxLon = -79.64, -79.12
)

var boroughs = []string{"Toronto", "North York", "Scarborough", "Etobicoke", "York", "East York"}

type options struct {
	outDir  string
	events  int
	cameras int
	days    int
	seed    uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var o options
	flag.StringVar(&o.outDir, "out-dir", "data_clean", "directory for the generated CSV files")
	flag.IntVar(&o.events, "events", 5000, "number of collision events")
	flag.IntVar(&o.cameras, "cameras", 50, "number of speed cameras")
	flag.IntVar(&o.days, "days", 365, "number of calendar days covered")
	flag.Uint64Var(&o.seed, "seed", 1, "random seed")
	flag.Parse()

	if o.events < 0 || o.cameras < 0 || o.days <= 0 {
		flag.Usage()
		return fmt.Errorf("-events and -cameras must be >= 0 and -days > 0")
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
	cameras := genCameras(rng, o.cameras)

	files := []struct {
		name string
		rows [][]string
	}{
		{"speed_cameras_clean.csv", cameraRows(cameras)},
		{"weather_clean.csv", genWeather(rng, o.days)},
		{"collisions_clean.csv", genEvents(rng, o, cameras)},
	}
	for _, f := range files {
		path := filepath.Join(o.outDir, f.name)
		if err := writeCSV(path, f.rows); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		log.Printf("wrote %s: %d rows", path, len(f.rows)-1)
	}
	return nil
}

func genCameras(rng *rand.Rand, n int) []domain.Point {
	cams := make([]domain.Point, n)
	for i := range cams {
		cams[i] = domain.PointOf(between(rng, minLat, maxLat), between(rng, minLon, maxLon))
	}
	return cams
}

func cameraRows(cams []domain.Point) [][]string {
	rows := [][]string{{"lat", "lon", "location"}}
	for i, c := range cams {
		rows = append(rows, []string{coord(c.Lat), coord(c.Lon), fmt.Sprintf("Camera %03d", i+1)})
	}
	return rows
}

// genWeather leaves roughly one day in twenty without a row so some events
// go unmatched.
func genWeather(rng *rand.Rand, days int) [][]string {
	rows := [][]string{{"date", "precipitation", "rain", "snow", "temperature_max"}}
	for d := range days {
		if rng.IntN(20) == 0 {
			continue
		}
		date := baseDate + domain.Date(d)
		var rain, snow float64
		if rng.IntN(3) == 0 {
			rain = round1(rng.ExpFloat64() * 4)
		}
		month := date.Time().Month()
		if (month <= time.March || month == time.December) && rng.IntN(4) == 0 {
			snow = round1(rng.ExpFloat64() * 2)
		}
		temp := round1(10 - 15*cosSeason(d) + rng.NormFloat64()*3)
		rows = append(rows, []string{
			date.String(),
			amount(rain + snow),
			amount(rain),
			amount(snow),
			strconv.FormatFloat(temp, 'f', -1, 64),
		})
	}
	return rows
}

// genEvents places about a third of events within a few hundred meters of a
// camera. About one in fifty has no coordinates.
func genEvents(rng *rand.Rand, o options, cams []domain.Point) [][]string {
	rows := [][]string{{"date", "lat", "lon", "severity", "borough"}}
	for range o.events {
		date := baseDate + domain.Date(rng.IntN(o.days))

		lat, lon := "", ""
		if rng.IntN(50) != 0 {
			p := domain.PointOf(between(rng, minLat, maxLat), between(rng, minLon, maxLon))
			if len(cams) > 0 && rng.IntN(3) == 0 {
				c := cams[rng.IntN(len(cams))]
				p = domain.PointOf(c.Lat+rng.NormFloat64()*0.002, c.Lon+rng.NormFloat64()*0.003)
			}
			lat, lon = coord(p.Lat), coord(p.Lon)
		}

		rows = append(rows, []string{date.String(), lat, lon, severity(rng), boroughs[rng.IntN(len(boroughs))]})
	}
	return rows
}

func severity(rng *rand.Rand) string {
	switch n := rng.IntN(100); {
	case n < 2:
		return "Fatal"
	case n < 30:
		return string(domain.SeverityInjury)
	default:
		return string(domain.SeverityPropertyDamage)
	}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// cosSeason is 1 in early January and -1 in early July.
func cosSeason(day int) float64 {
	return math.Cos(2 * math.Pi * float64(day%365) / 365)
}
