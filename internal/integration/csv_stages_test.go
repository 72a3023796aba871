package integration_test

import (
	"context"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/adapter/csvfile"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/geo"
	"github.com/couchcryptid/streetlight-datagen/internal/observability"
	"github.com/couchcryptid/streetlight-datagen/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TestCSVStagedRuns runs the four stages separately through a CSV directory,
// each stage loading what the previous ones wrote, and checks the joined
// result for referential integrity.
func TestCSVStagedRuns(t *testing.T) {
	dir := t.TempDir()
	store := csvfile.New(dir, slog.Default())

	params := domain.DefaultParams()
	params.NeighborhoodCount = 9
	params.LightCount = 1000
	params.SupplierCount = 5

	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC))
	p := pipeline.New(params, store, store, clock, slog.Default(), observability.NewMetricsForTesting())

	ctx := context.Background()
	for i, stage := range []pipeline.Stage{
		pipeline.StageNeighborhoods, pipeline.StageLights, pipeline.StageSuppliers, pipeline.StageEnrichment,
	} {
		_, err := p.Run(ctx, stage, newRNG(int64(i+1)))
		require.NoError(t, err, "stage %s", stage)
		clock.Advance(time.Minute)
	}

	ds, err := store.LoadDataset()
	require.NoError(t, err)

	hoods := map[string]domain.Neighborhood{}
	for _, n := range ds.Neighborhoods {
		hoods[n.ID] = n
	}
	statuses := map[domain.Status]int{}
	for _, l := range ds.Lights {
		n, ok := hoods[l.NeighborhoodID]
		require.True(t, ok, l.ID)
		assert.True(t, geo.Contains(n.Boundary, l.Location) || l.Location == geo.Centroid(n.Boundary), l.ID)
		statuses[l.Status]++
	}
	assert.Equal(t, map[domain.Status]int{
		domain.StatusOperational:         850,
		domain.StatusMaintenanceRequired: 100,
		domain.StatusFaulty:              50,
	}, statuses)

	assert.Len(t, ds.Suppliers, 5)
	assert.Len(t, ds.Weather, 3000)
	assert.Len(t, ds.Demographics, 9)
	assert.Len(t, ds.PowerGrid, 1000)
}
