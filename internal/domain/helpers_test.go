package domain

import (
	"io"
	"log/slog"
	"time"
)

func f64(v float64) *float64 { return &v }

func day(d int) Date { return DateOf(2020, time.January, d) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(d Date, lat, lon float64) Event {
	return Event{Date: d, Location: PointOf(lat, lon), Severity: SeverityInjury}
}

func camera(id int, lat, lon float64, attrs ...string) Landmark {
	return Landmark{ID: id, Location: PointOf(lat, lon), Attrs: attrs}
}
