package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskModel_Score(t *testing.T) {
	m := domain.DefaultRiskModel()
	tests := []struct {
		name    string
		base    float64
		ageDays int
		status  domain.Status
		want    float64
	}{
		{"new operational", 0.8, 0, domain.StatusOperational, 0.8},
		{"age adds linearly", 0.2, 1095, domain.StatusOperational, 0.3},
		{"age capped", 0.2, 20_000, domain.StatusOperational, 0.35},
		{"maintenance bump", 0.5, 0, domain.StatusMaintenanceRequired, 0.6},
		{"faulty gets no bump", 0.5, 0, domain.StatusFaulty, 0.5},
		{"clamped to ceiling", 0.9, 10_000, domain.StatusMaintenanceRequired, 0.99},
		{"rounded", 0.33333, 0, domain.StatusOperational, 0.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Score(tt.base, tt.ageDays, tt.status), 1e-9)
		})
	}
}

func TestRiskModel_Predicts(t *testing.T) {
	m := domain.DefaultRiskModel()
	assert.True(t, m.Predicts(domain.StatusOperational, 0.51))
	assert.False(t, m.Predicts(domain.StatusOperational, 0.5))
	assert.True(t, m.Predicts(domain.StatusMaintenanceRequired, 0.99))
	assert.False(t, m.Predicts(domain.StatusFaulty, 0.99))
}

func TestRiskModel_PredictFailure(t *testing.T) {
	m := domain.DefaultRiskModel()
	rng := rand.New(rand.NewSource(2))
	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, m.PredictFailure(rng, domain.StatusOperational, 0.4, asOf))

	for range 500 {
		d := m.PredictFailure(rng, domain.StatusOperational, 0.6, asOf)
		require.NotNil(t, d)
		days := int(d.Sub(today).Hours() / 24)
		// floor(uniform(7, 180) * 0.4)
		assert.GreaterOrEqual(t, days, 2)
		assert.LessOrEqual(t, days, 72)
	}
}

func TestSeasonRisk_OldMonsoonMaintenanceLight(t *testing.T) {
	m := domain.DefaultRiskModel()
	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	light := domain.StreetLight{
		ID:          "SL-0001",
		Status:      domain.StatusMaintenanceRequired,
		InstalledOn: today.AddDate(-11, 0, 0),
	}

	for seed := range int64(50) {
		w := m.SeasonRisk(rand.New(rand.NewSource(seed)), light, domain.SeasonMonsoon, asOf)
		assert.GreaterOrEqual(t, w.FailureRiskScore, 0.95)
		assert.LessOrEqual(t, w.FailureRiskScore, 0.99)
		require.NotNil(t, w.PredictedFailureDate)
		assert.False(t, w.PredictedFailureDate.Before(today))
		assert.False(t, w.PredictedFailureDate.After(today.AddDate(0, 0, 180)))
	}
}

func TestGenerateWeather(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	hoods, err := domain.GenerateNeighborhoods(rng, 10, domain.DefaultBounds)
	require.NoError(t, err)
	lights, _, err := domain.GenerateStreetLights(rng, hoods, 1000, asOf)
	require.NoError(t, err)

	m := domain.DefaultRiskModel()
	rows, stats := domain.GenerateWeather(rng, lights, m, asOf)
	require.Len(t, rows, 3000)

	status := map[string]domain.Status{}
	for _, l := range lights {
		status[l.ID] = l.Status
	}

	predicted := 0
	for i, w := range rows {
		assert.Equal(t, lights[i/3].ID, w.LightID)
		assert.Equal(t, domain.Seasons[i%3], w.Season)

		p := domain.SeasonProfiles[w.Season]
		assert.GreaterOrEqual(t, w.AvgTemperatureC, p.Temperature.Min)
		assert.LessOrEqual(t, w.AvgTemperatureC, p.Temperature.Max)
		assert.GreaterOrEqual(t, w.RainfallMm, p.Rainfall.Min)
		assert.LessOrEqual(t, w.RainfallMm, p.Rainfall.Max)
		assert.GreaterOrEqual(t, w.FailureRiskScore, 0.0)
		assert.LessOrEqual(t, w.FailureRiskScore, 0.99)

		want := status[w.LightID] != domain.StatusFaulty && w.FailureRiskScore > 0.5
		assert.Equal(t, want, w.PredictedFailureDate != nil, "%s %s", w.LightID, w.Season)
		if w.PredictedFailureDate != nil {
			predicted++
		}
	}
	assert.Equal(t, predicted, stats.Predicted)
}

func TestRiskModel_Validate(t *testing.T) {
	require.NoError(t, domain.DefaultRiskModel().Validate())

	m := domain.DefaultRiskModel()
	m.Ceiling = 1.2
	require.Error(t, m.Validate())

	m = domain.DefaultRiskModel()
	m.HorizonMinDays, m.HorizonMaxDays = 30, 10
	require.Error(t, m.Validate())

	m = domain.DefaultRiskModel()
	m.PredictionThreshold = 0.99
	require.Error(t, m.Validate())
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, domain.DefaultParams().Validate())

	p := domain.DefaultParams()
	p.LightCount = 10
	require.Error(t, p.Validate())

	p = domain.DefaultParams()
	p.Center = [2]float64{0, 0}
	require.Error(t, p.Validate())
}
