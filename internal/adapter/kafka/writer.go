package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/collision-enrichment/internal/config"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes one message per enriched collision to a Kafka topic.
// It implements pipeline.TableSink.
type Writer struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// WriteTable publishes every row in input order, batchSize messages per
// WriteMessages call. Messages are keyed by event ID so re-runs land on the
// same partitions.
func (w *Writer) WriteTable(ctx context.Context, t *domain.EnrichedTable) error {
	cols := t.Columns()
	batch := make([]kafkago.Message, 0, min(w.batchSize, len(t.Rows)))
	batches := 0
	for i := range t.Rows {
		msg, err := serializeToMessage(t, cols, i)
		if err != nil {
			return err
		}
		batch = append(batch, msg)
		if len(batch) == w.batchSize || i == len(t.Rows)-1 {
			if err := w.writer.WriteMessages(ctx, batch...); err != nil {
				return fmt.Errorf("publish rows %d-%d: %w", i+1-len(batch), i, err)
			}
			batches++
			batch = batch[:0]
		}
	}
	w.logger.Debug("kafka messages published", "messages", len(t.Rows), "batches", batches)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals row i into a JSON object keyed by output column
// name, plus its event ID.
func serializeToMessage(t *domain.EnrichedTable, cols []domain.Column, i int) (kafkago.Message, error) {
	id := domain.EventID(i, t.Rows[i].Event)
	vals := t.Values(i)

	obj := make(map[string]any, len(cols)+1)
	obj[domain.ColEventID] = id
	for j, c := range cols {
		v := vals[j]
		if d, ok := v.(domain.Date); ok {
			v = d.String()
		}
		obj[c.Name] = v
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row %d: %w", i, err)
	}

	r := &t.Rows[i]
	return kafkago.Message{
		Key:   []byte(id),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(r.Severity)},
			{Key: "precip_day", Value: []byte(strconv.FormatBool(r.Weather.PrecipDay))},
		},
	}, nil
}
