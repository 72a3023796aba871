package kafka

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	tbl := domain.NewTable(domain.TablePowerGrid, []domain.PowerGridEnrichment{
		{LightID: "SL-0007", GridZone: "ZONE-C", AvgLoadPercent: 70.25, OutageHistoryCount: 1},
	})
	run := domain.RunInfo{ID: "run-1", Stage: "enrichment", GeneratedAt: now}

	msg, err := serializeToMessage(tbl, 0, run)
	require.NoError(t, err)

	assert.Equal(t, []byte("SL-0007"), msg.Key)
	assert.JSONEq(t, `{"light_id":"SL-0007","grid_zone":"ZONE-C","avg_load_percent":"70.25","outage_history_count":"1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "table", msg.Headers[0].Key)
	assert.Equal(t, []byte(domain.TablePowerGrid), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_WeatherKeyIncludesSeason(t *testing.T) {
	tbl := domain.NewTable(domain.TableWeather, []domain.WeatherEnrichment{
		{LightID: "SL-0001", Season: domain.SeasonSummer, FailureRiskScore: 0.4},
	})
	msg, err := serializeToMessage(tbl, 0, domain.RunInfo{ID: "r"})
	require.NoError(t, err)
	assert.Equal(t, "SL-0001/summer", string(msg.Key))

	var v map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &v))
	assert.Empty(t, v["predicted_failure_date"])
	assert.Equal(t, "summer", v["season"])
}

func TestWriterTopic(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopicPrefix: "city"}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, "city.street_lights", w.Topic(domain.TableStreetLights))
}

func TestNewWriter_BatchSize(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, BatchSize: 200}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, 200, w.batchSize)
	assert.Equal(t, 200, w.writer.BatchSize)

	w = NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}}, slog.Default())
	t.Cleanup(func() { _ = w.Close() })
	assert.Equal(t, defaultBatchSize, w.batchSize)
}
