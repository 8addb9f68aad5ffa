package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/csvtable"
	"github.com/couchcryptid/collision-enrichment/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/collision-enrichment/internal/adapter/kafka"
	"github.com/couchcryptid/collision-enrichment/internal/adapter/mapbox"
	"github.com/couchcryptid/collision-enrichment/internal/adapter/parquet"
	"github.com/couchcryptid/collision-enrichment/internal/adapter/postgres"
	"github.com/couchcryptid/collision-enrichment/internal/config"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
	"github.com/couchcryptid/collision-enrichment/internal/observability"
	"github.com/couchcryptid/collision-enrichment/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger, metrics)
	stop()
	if err != nil {
		logger.Error("enrichment failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	// Geocoder is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			return err
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	sinks := []pipeline.TableSink{
		csvtable.NewWriter(cfg.CSVPath()),
		parquet.NewWriter(cfg.ParquetPath()),
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
	}
	if cfg.PostgresDSN != "" {
		sink, err := postgres.NewSink(ctx, cfg.PostgresDSN, cfg.PostgresTable, logger)
		if err != nil {
			return err
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	source := csvtable.NewSource(cfg.EventsPath, cfg.WeatherPath, cfg.LandmarksPath, logger)
	enricher := pipeline.NewEnricher(geocoder,
		domain.EnrichOptions{ThresholdMeters: cfg.ThresholdMeters, LandmarkPrefix: cfg.LandmarkPrefix},
		domain.SpatialOptions{ChunkSize: cfg.ChunkSize, Workers: cfg.SpatialWorkers},
		metrics, logger)
	p := pipeline.New(source, enricher, sinks, logger, metrics, clockwork.NewRealClock())

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	_, err := p.Run(ctx)
	return err
}
