package domain

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// Range is a closed interval drawn from uniformly.
type Range struct {
	Min, Max float64
}

func (r Range) draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// SeasonProfile holds the weather and baseline risk ranges of a season.
type SeasonProfile struct {
	Temperature Range // °C
	Rainfall    Range // mm
	BaseRisk    Range
}

// SeasonProfiles encodes the assumption that monsoon failures are the most
// common and winter failures the least.
var SeasonProfiles = map[Season]SeasonProfile{
	SeasonMonsoon: {Temperature: Range{25, 30}, Rainfall: Range{150, 250}, BaseRisk: Range{0.70, 0.90}},
	SeasonSummer:  {Temperature: Range{32, 38}, Rainfall: Range{15, 40}, BaseRisk: Range{0.50, 0.70}},
	SeasonWinter:  {Temperature: Range{18, 25}, Rainfall: Range{5, 20}, BaseRisk: Range{0.20, 0.40}},
}

// RiskModel holds the heuristic constants of the failure-risk score. They are
// demo-plausible defaults, not fitted values.
type RiskModel struct {
	AgeCap              float64 // largest age contribution
	AgeHorizonDays      float64 // age at which the linear penalty reaches 1.0
	MaintenanceBump     float64 // added for maintenance_required lights
	Ceiling             float64 // upper clamp of the score
	PredictionThreshold float64 // scores above this get a predicted date
	HorizonMinDays      float64
	HorizonMaxDays      float64
}

// DefaultRiskModel returns the stock constants.
func DefaultRiskModel() RiskModel {
	return RiskModel{
		AgeCap:              0.15,
		AgeHorizonDays:      365 * 30,
		MaintenanceBump:     0.10,
		Ceiling:             0.99,
		PredictionThreshold: 0.5,
		HorizonMinDays:      7,
		HorizonMaxDays:      180,
	}
}

// Validate rejects constants that would break the score bounds.
func (m RiskModel) Validate() error {
	switch {
	case m.AgeCap < 0:
		return errors.New("risk age cap must not be negative")
	case m.AgeHorizonDays <= 0:
		return errors.New("risk age horizon must be positive")
	case m.MaintenanceBump < 0:
		return errors.New("risk maintenance bump must not be negative")
	case m.Ceiling <= 0 || m.Ceiling >= 1:
		return errors.New("risk ceiling must be in (0, 1)")
	case m.PredictionThreshold < 0 || m.PredictionThreshold >= m.Ceiling:
		return errors.New("risk prediction threshold must be in [0, ceiling)")
	case m.HorizonMinDays < 0 || m.HorizonMaxDays < m.HorizonMinDays:
		return errors.New("risk horizon must satisfy 0 <= min <= max")
	}
	return nil
}

// AgeFactor is the linear age penalty, capped at AgeCap.
func (m RiskModel) AgeFactor(ageDays int) float64 {
	if ageDays <= 0 {
		return 0
	}
	return math.Min(m.AgeCap, float64(ageDays)/m.AgeHorizonDays)
}

// StatusFactor is the status contribution. Faulty lights get none because
// they need no forward prediction.
func (m RiskModel) StatusFactor(s Status) float64 {
	if s == StatusMaintenanceRequired {
		return m.MaintenanceBump
	}
	return 0
}

// Score combines a base risk with the age and status factors, clamps it into
// [0, Ceiling], and rounds it to two decimals.
func (m RiskModel) Score(base float64, ageDays int, s Status) float64 {
	raw := base + m.AgeFactor(ageDays) + m.StatusFactor(s)
	clamped := math.Max(0, math.Min(m.Ceiling, raw))
	return math.Min(m.Ceiling, round2(clamped))
}

// Predicts reports whether a light with this status and score gets a
// predicted failure date.
func (m RiskModel) Predicts(s Status, score float64) bool {
	return s != StatusFaulty && score > m.PredictionThreshold
}

// PredictFailure returns the predicted failure date for a light, or nil when
// Predicts is false. The offset shrinks as the score grows.
func (m RiskModel) PredictFailure(rng *rand.Rand, s Status, score float64, asOf time.Time) *time.Time {
	if !m.Predicts(s, score) {
		return nil
	}
	horizon := Range{m.HorizonMinDays, m.HorizonMaxDays}.draw(rng)
	days := int(math.Floor(horizon * (1 - score)))
	d := dateOf(asOf).AddDate(0, 0, days)
	return &d
}

// SeasonRisk draws one season's weather row for a light.
func (m RiskModel) SeasonRisk(rng *rand.Rand, light StreetLight, season Season, asOf time.Time) WeatherEnrichment {
	profile := SeasonProfiles[season]

	temp := round2(profile.Temperature.draw(rng))
	rain := round2(profile.Rainfall.draw(rng))
	score := m.Score(profile.BaseRisk.draw(rng), AgeDays(light.InstalledOn, asOf), light.Status)

	return WeatherEnrichment{
		LightID:              light.ID,
		Season:               season,
		AvgTemperatureC:      temp,
		RainfallMm:           rain,
		FailureRiskScore:     score,
		PredictedFailureDate: m.PredictFailure(rng, light.Status, score, asOf),
	}
}

// AgeDays is the number of whole days from installed to asOf.
func AgeDays(installed, asOf time.Time) int {
	return int(dateOf(asOf).Sub(dateOf(installed)).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dateOf truncates t to midnight UTC of its calendar date.
func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
