package csvtable

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// Source loads the three canonical input tables from delimited files.
// It implements pipeline.TableSource.
type Source struct {
	eventsPath    string
	weatherPath   string
	landmarksPath string
	logger        *slog.Logger
}

// NewSource creates a file-backed table source.
func NewSource(eventsPath, weatherPath, landmarksPath string, logger *slog.Logger) *Source {
	return &Source{
		eventsPath:    eventsPath,
		weatherPath:   weatherPath,
		landmarksPath: landmarksPath,
		logger:        logger,
	}
}

// Load reads events, weather and landmarks. A missing landmarks file yields
// an empty landmark table; a missing events or weather file is an error.
func (s *Source) Load(ctx context.Context) (domain.Tables, error) {
	var tables domain.Tables
	var err error

	if tables.Events, err = loadFile(s.eventsPath, ReadEvents); err != nil {
		return domain.Tables{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Tables{}, err
	}
	if tables.Weather, err = loadFile(s.weatherPath, ReadWeather); err != nil {
		return domain.Tables{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Tables{}, err
	}

	tables.Landmarks, err = loadFile(s.landmarksPath, ReadLandmarks)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("landmarks file not found, continuing without landmarks", "path", s.landmarksPath)
		return tables, nil
	}
	if err != nil {
		return domain.Tables{}, err
	}

	s.logger.Info("tables loaded",
		"events", len(tables.Events.Rows),
		"weather_days", len(tables.Weather.Rows),
		"landmarks", len(tables.Landmarks.Rows),
	)
	return tables, nil
}

func loadFile[T any](path string, read func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := read(bufio.NewReader(f))
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
