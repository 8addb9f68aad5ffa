package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
	"github.com/couchcryptid/collision-enrichment/internal/observability"
)

// JoinEnricher implements Enricher with the brute-force spatial index and
// optional landmark geocoding.
type JoinEnricher struct {
	geocoder domain.Geocoder
	enrich   domain.EnrichOptions
	spatial  domain.SpatialOptions
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewEnricher creates a JoinEnricher. Pass a nil geocoder to skip place-name
// enrichment of landmarks.
func NewEnricher(geocoder domain.Geocoder, enrich domain.EnrichOptions, spatial domain.SpatialOptions, metrics *observability.Metrics, logger *slog.Logger) *JoinEnricher {
	return &JoinEnricher{
		geocoder: geocoder,
		enrich:   enrich,
		spatial:  spatial,
		metrics:  metrics,
		logger:   logger,
	}
}

func (e *JoinEnricher) Enrich(ctx context.Context, t domain.Tables) (domain.EnrichedTable, error) {
	if e.geocoder != nil {
		var stats domain.GeocodeStats
		t.Landmarks, stats = domain.EnrichLandmarksWithPlaceNames(ctx, t.Landmarks, e.geocoder, e.logger)
		e.logger.Info("landmarks geocoded", "resolved", stats.Resolved, "empty", stats.Empty, "failed", stats.Failed)
	}

	ix, err := domain.NewBruteForceIndex(t.Landmarks.Rows, e.spatial)
	if err != nil {
		return domain.EnrichedTable{}, fmt.Errorf("build landmark index: %w", err)
	}
	ix.OnChunk(func(size int) {
		e.metrics.ChunksProcessed.Inc()
		e.metrics.ChunkSize.Observe(float64(size))
	})

	return domain.Enrich(ctx, t, ix, e.enrich)
}
