package domain_test

import (
	"math/rand"
	"testing"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		density int
		want    string
	}{
		{40_000, domain.ClassUrban},
		{15_001, domain.ClassUrban},
		{15_000, domain.ClassSuburban},
		{5_001, domain.ClassSuburban},
		{5_000, domain.ClassRural},
		{0, domain.ClassRural},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Classify(tt.density), "density %d", tt.density)
	}
}

func squareAt(lon, lat, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon, lat}, {lon + side, lat}, {lon + side, lat + side}, {lon, lat + side}, {lon, lat},
	}}
}

func TestGenerateDemographics(t *testing.T) {
	hoods := []domain.Neighborhood{
		{ID: "NH-001", Boundary: squareAt(77.5, 12.9, 0.1), Population: 100_000},
		{ID: "NH-002", Boundary: squareAt(77.6, 12.9, 0.01), Population: 100_000},
		// Too small to measure; the area floor applies.
		{ID: "NH-003", Boundary: squareAt(77.6, 13.0, 0.0001), Population: 10_000},
	}

	rows := domain.GenerateDemographics(hoods)
	require.Len(t, rows, 3)

	// ~120 km²
	assert.Equal(t, "NH-001", rows[0].NeighborhoodID)
	assert.InDelta(t, 830, rows[0].PopulationDensity, 30)
	assert.Equal(t, domain.ClassRural, rows[0].UrbanClassification)

	// ~1.2 km²
	assert.InDelta(t, 83_000, rows[1].PopulationDensity, 3000)
	assert.Equal(t, domain.ClassUrban, rows[1].UrbanClassification)

	assert.Equal(t, 20_000, rows[2].PopulationDensity)
	assert.Equal(t, domain.ClassUrban, rows[2].UrbanClassification)
}

func TestGenerateDemographics_DefaultLayoutIsMostlyUrban(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	hoods, err := domain.GenerateNeighborhoods(rng, 50, domain.DefaultBounds)
	require.NoError(t, err)

	classes := map[string]int{}
	for _, row := range domain.GenerateDemographics(hoods) {
		classes[row.UrbanClassification]++
	}
	assert.GreaterOrEqual(t, classes[domain.ClassUrban], 35, "%v", classes)

	// Spreading the same count over a city nine times the size lowers density.
	wide := orb.Bound{Min: orb.Point{77.3, 12.5}, Max: orb.Point{77.9, 13.4}}
	hoods, err = domain.GenerateNeighborhoods(rand.New(rand.NewSource(42)), 50, wide)
	require.NoError(t, err)
	sparse := map[string]int{}
	for _, row := range domain.GenerateDemographics(hoods) {
		sparse[row.UrbanClassification]++
	}
	assert.Less(t, sparse[domain.ClassUrban], classes[domain.ClassUrban], "%v", sparse)
}

func TestZoneFor(t *testing.T) {
	tests := []struct {
		id, want string
	}{
		{"SL-0001", "ZONE-B"},
		{"SL-0004", "ZONE-E"},
		{"SL-0005", "ZONE-A"},
		{"SL-1002", "ZONE-C"},
	}
	for _, tt := range tests {
		got, err := domain.ZoneFor(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.id)
	}

	_, err := domain.ZoneFor("lamp")
	require.Error(t, err)
}

func TestOutageCount(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for range 500 {
		c := domain.OutageCount(rng, 85)
		assert.True(t, c >= 3 && c <= 8, "overloaded: %d", c)
		c = domain.OutageCount(rng, 78)
		assert.True(t, c >= 1 && c <= 4, "busy: %d", c)
		c = domain.OutageCount(rng, 70)
		assert.True(t, c >= 0 && c <= 2, "normal: %d", c)
	}
}

func TestGeneratePowerGrid(t *testing.T) {
	base := map[string]float64{"ZONE-A": 75, "ZONE-B": 82, "ZONE-C": 68, "ZONE-D": 78, "ZONE-E": 71}

	lights := make([]domain.StreetLight, 200)
	for i := range lights {
		lights[i].ID = domain.LightID(i + 1)
	}

	rows, err := domain.GeneratePowerGrid(rand.New(rand.NewSource(9)), lights)
	require.NoError(t, err)
	require.Len(t, rows, 200)

	for i, r := range rows {
		assert.Equal(t, lights[i].ID, r.LightID)
		assert.Equal(t, domain.GridZones[(i+1)%5], r.GridZone)
		assert.InDelta(t, base[r.GridZone], r.AvgLoadPercent, 5.0)
		assert.InDelta(t, r.AvgLoadPercent, float64(int(r.AvgLoadPercent*100+0.5))/100, 1e-9)
		assert.GreaterOrEqual(t, r.OutageHistoryCount, 0)
		assert.LessOrEqual(t, r.OutageHistoryCount, 8)
	}
}

func TestGeneratePowerGrid_BadID(t *testing.T) {
	_, err := domain.GeneratePowerGrid(rand.New(rand.NewSource(1)), []domain.StreetLight{{ID: "oops"}})
	require.Error(t, err)
}
