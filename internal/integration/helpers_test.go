//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64(v float64) *float64 { return &v }

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("collision-enrichment"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(c) })

	brokers, err := c.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// startPostgres runs a throwaway PostgreSQL server and returns its DSN.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(c) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return "postgres://testuser:testpass@" + net.JoinHostPort(host, port.Port()) + "/testdb?sslmode=disable"
}

// enrichedFixture builds a small enriched table through the real joins.
func enrichedFixture(t *testing.T) domain.EnrichedTable {
	t.Helper()
	tables := domain.Tables{
		Events: domain.EventTable{
			ExtraColumns: []string{"borough"},
			Rows: []domain.Event{
				{Date: domain.DateOf(2020, time.January, 1), Location: domain.PointOf(43.7, -79.4), Severity: domain.SeverityInjury, Extra: []string{"Toronto"}},
				{Date: domain.DateOf(2020, time.January, 2), Location: domain.PointOf(43.75, -79.3), Severity: domain.SeverityPropertyDamage, Extra: []string{"North York"}},
				{Date: domain.DateOf(2020, time.January, 3), Severity: domain.SeverityPropertyDamage, Extra: []string{""}},
			},
		},
		Weather: domain.WeatherTable{
			Columns: []string{"precipitation", "temperature_max"},
			Rows: []domain.DailyWeather{
				{Date: domain.DateOf(2020, time.January, 1), Values: []*float64{f64(2.5), f64(-1)}},
				{Date: domain.DateOf(2020, time.January, 2), Values: []*float64{f64(0), nil}},
			},
		},
		Landmarks: domain.LandmarkTable{
			AttributeColumns: []string{"location"},
			Rows: []domain.Landmark{
				{ID: 0, Location: domain.PointOf(43.7015, -79.4), Attrs: []string{"Yonge St"}},
				{ID: 1, Location: domain.PointOf(43.6, -79.5), Attrs: []string{"Lakeshore Blvd"}},
			},
		},
	}
	ix, err := domain.NewBruteForceIndex(tables.Landmarks.Rows, domain.SpatialOptions{})
	require.NoError(t, err)
	out, err := domain.Enrich(context.Background(), tables, ix, domain.EnrichOptions{})
	require.NoError(t, err)
	require.NoError(t, domain.Validate(tables, out))
	return out
}
