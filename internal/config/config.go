package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	EventsPath    string
	WeatherPath   string
	LandmarksPath string
	OutputDir     string
	OutputName    string

	// Enrichment parameters.
	ThresholdMeters float64
	ChunkSize       int
	SpatialWorkers  int
	LandmarkPrefix  string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int

	// Optional Postgres sink.
	PostgresDSN   string
	PostgresTable string

	// Mapbox reverse geocoding of landmarks.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// CSVPath is the delimited output file.
func (c *Config) CSVPath() string {
	return filepath.Join(c.OutputDir, c.OutputName+".csv")
}

// ParquetPath is the columnar output file.
func (c *Config) ParquetPath() string {
	return filepath.Join(c.OutputDir, c.OutputName+".parquet")
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("PROXIMITY_THRESHOLD_M", "250"), 64)
	if err != nil || !(threshold > 0) {
		return nil, errors.New("invalid PROXIMITY_THRESHOLD_M: must be a positive number of meters")
	}

	chunkSize, err := parsePositiveInt("CHUNK_SIZE", 50000)
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("SPATIAL_WORKERS", runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}
	mapboxCacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		EventsPath:    sharedcfg.EnvOrDefault("EVENTS_PATH", "data_clean/collisions_clean.csv"),
		WeatherPath:   sharedcfg.EnvOrDefault("WEATHER_PATH", "data_clean/weather_clean.csv"),
		LandmarksPath: sharedcfg.EnvOrDefault("LANDMARKS_PATH", "data_clean/speed_cameras_clean.csv"),
		OutputDir:     sharedcfg.EnvOrDefault("OUTPUT_DIR", "data_model"),
		OutputName:    sharedcfg.EnvOrDefault("OUTPUT_NAME", "collisions_enriched"),

		ThresholdMeters: threshold,
		ChunkSize:       chunkSize,
		SpatialWorkers:  workers,
		LandmarkPrefix:  sharedcfg.EnvOrDefault("LANDMARK_PREFIX", "cam_"),

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "collisions-enriched"),
		BatchSize:      batchSize,

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		PostgresTable: sharedcfg.EnvOrDefault("POSTGRES_TABLE", "collisions_enriched"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if cfg.OutputName != filepath.Base(cfg.OutputName) {
		return nil, errors.New("invalid OUTPUT_NAME: must be a file name, not a path")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
