package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// defaultBatchSize applies when the config carries no BATCH_SIZE.
const defaultBatchSize = 50

// Writer publishes table rows to Kafka, one topic per table.
// It implements pipeline.Sink.
type Writer struct {
	writer    *kafkago.Writer
	prefix    string
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer for the configured brokers. The topic is
// set per message, so the underlying writer has none.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchSize:              batchSize,
		BatchTimeout:           cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, prefix: cfg.KafkaTopicPrefix, batchSize: batchSize, logger: logger}
}

// Topic returns the topic a table is published to.
func (w *Writer) Topic(table string) string {
	return Topic(w.prefix, table)
}

// Topic joins a prefix and a table name.
func Topic(prefix, table string) string {
	return prefix + "." + table
}

// WriteTables publishes each table to its topic in batches, keyed by row key.
func (w *Writer) WriteTables(ctx context.Context, run domain.RunInfo, tables []domain.Table) error {
	for _, t := range tables {
		topic := w.Topic(t.Name)
		for start := 0; start < len(t.Rows); start += w.batchSize {
			end := min(start+w.batchSize, len(t.Rows))
			msgs := make([]kafkago.Message, 0, end-start)
			for i := start; i < end; i++ {
				msg, err := serializeToMessage(t, i, run)
				if err != nil {
					return err
				}
				msg.Topic = topic
				msgs = append(msgs, msg)
			}
			if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish %s: %w", topic, err)
			}
		}
		w.logger.Info("table published", "table", t.Name, "topic", topic, "rows", len(t.Rows), "run_id", run.ID)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals row i of t into a Kafka message whose value is
// a JSON object of column name to cell string.
func serializeToMessage(t domain.Table, i int, run domain.RunInfo) (kafkago.Message, error) {
	data, err := json.Marshal(t.Record(i))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s row %d: %w", t.Name, i, err)
	}
	return kafkago.Message{
		Key:   []byte(t.Rows[i].Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "table", Value: []byte(t.Name)},
			{Key: "run_id", Value: []byte(run.ID)},
			{Key: "generated_at", Value: []byte(run.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
