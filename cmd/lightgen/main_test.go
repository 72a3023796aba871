package main

import (
	"context"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/streetlight-datagen/internal/adapter/kafka"
	"github.com/couchcryptid/streetlight-datagen/internal/adapter/xlsx"
	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/observability"
	"github.com/couchcryptid/streetlight-datagen/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	sink, closeSink := newSink(&config.Config{Sink: config.SinkCSV, OutputDir: dir}, discardLogger())
	assert.IsType(t, &csvfile.Store{}, sink)
	require.NoError(t, closeSink())

	sink, closeSink = newSink(&config.Config{Sink: config.SinkXLSX, OutputDir: dir}, discardLogger())
	assert.IsType(t, &xlsx.Workbook{}, sink)
	require.NoError(t, closeSink())

	sink, closeSink = newSink(&config.Config{
		Sink:             config.SinkKafka,
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaTopicPrefix: "streetlights",
	}, discardLogger())
	assert.IsType(t, &kafkaadapter.Writer{}, sink)
	require.NoError(t, closeSink())
}

func TestRNGFactory(t *testing.T) {
	seeded := rngFactory(&config.Config{Seed: 99, HasSeed: true}, discardLogger())
	assert.Equal(t, seeded().Int63(), seeded().Int63())

	unseeded := rngFactory(&config.Config{}, discardLogger())
	assert.NotNil(t, unseeded())
}

func TestGenerateCmd_UnknownStage(t *testing.T) {
	cmd := generateCmd()
	cmd.SetArgs([]string{"--stage", "streetlamps"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestTrigger(t *testing.T) {
	dir := t.TempDir()
	params := domain.DefaultParams()
	params.NeighborhoodCount = 4
	params.LightCount = 40
	params.SupplierCount = 3

	store := csvfile.New(dir, discardLogger())
	p := pipeline.New(params, store, store,
		clockwork.NewFakeClockAt(time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)),
		discardLogger(), observability.NewMetricsForTesting())

	tr := trigger{p: p, stage: pipeline.StageAll, newRNG: func() *rand.Rand { return rand.New(rand.NewSource(5)) }}
	run, rows, err := tr.Trigger(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "all", run.Stage)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 40, rows[domain.TableStreetLights])
	assert.Equal(t, 120, rows[domain.TableWeather])
	assert.Equal(t, 3, rows[domain.TableSuppliers])
	assert.FileExists(t, store.Path(domain.TablePowerGrid))
}
