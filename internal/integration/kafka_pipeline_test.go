//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/adapter/kafka"
	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/observability"
	"github.com/couchcryptid/streetlight-datagen/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopicPrefix = "it-streetlights"

// publishedRow holds a deserialized message read from a table topic.
type publishedRow struct {
	Fields  map[string]string
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("lightgen-it"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
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
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readRows consumes n messages from topic.
func readRows(ctx context.Context, t *testing.T, broker, topic string, n int) []publishedRow {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("it-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	rows := make([]publishedRow, 0, n)
	for len(rows) < n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read from %s", topic)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var fields map[string]string
		require.NoError(t, json.Unmarshal(msg.Value, &fields), "unmarshal row")
		rows = append(rows, publishedRow{Fields: fields, Key: string(msg.Key), Headers: headers})
	}
	return rows
}

// TestKafkaSinkEndToEnd runs a full generation into Kafka and reads the
// published tables back.
func TestKafkaSinkEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	for _, table := range domain.TableOrder {
		createTopic(t, broker, kafka.Topic(testTopicPrefix, table))
	}

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaTopicPrefix: testTopicPrefix,
		Params:           domain.DefaultParams(),
	}
	cfg.Params.NeighborhoodCount = 5
	cfg.Params.LightCount = 50
	cfg.Params.SupplierCount = 4

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	generatedAt := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)
	p := pipeline.New(cfg.Params, nil, writer, clockwork.NewFakeClockAt(generatedAt),
		discardLogger(), observability.NewMetricsForTesting())

	res, err := p.Run(ctx, pipeline.StageAll, newRNG(1))
	require.NoError(t, err)

	lights := readRows(ctx, t, broker, kafka.Topic(testTopicPrefix, domain.TableStreetLights), 50)
	byID := map[string]domain.StreetLight{}
	for _, l := range res.Dataset.Lights {
		byID[l.ID] = l
	}
	for _, row := range lights {
		assert.Equal(t, row.Key, row.Fields["light_id"])
		assert.Equal(t, domain.TableStreetLights, row.Headers["table"])
		assert.Equal(t, res.Run.ID, row.Headers["run_id"])
		assert.Equal(t, "2024-06-15T09:30:00Z", row.Headers["generated_at"])

		want, ok := byID[row.Key]
		require.True(t, ok, "unexpected light %s", row.Key)
		assert.Equal(t, string(want.Status), row.Fields["status"])
		assert.Equal(t, want.NeighborhoodID, row.Fields["neighborhood_id"])
	}

	weather := readRows(ctx, t, broker, kafka.Topic(testTopicPrefix, domain.TableWeather), 150)
	seasons := map[string]int{}
	for _, row := range weather {
		seasons[row.Fields["season"]]++
	}
	assert.Equal(t, map[string]int{"monsoon": 50, "summer": 50, "winter": 50}, seasons)

	suppliers := readRows(ctx, t, broker, kafka.Topic(testTopicPrefix, domain.TableSuppliers), 4)
	assert.Equal(t, "SUP-001", suppliers[0].Key)
}
