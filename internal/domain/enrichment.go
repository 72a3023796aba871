package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
)

// Urban classification labels and their density thresholds (people per km²).
const (
	ClassUrban    = "urban"
	ClassSuburban = "suburban"
	ClassRural    = "rural"

	urbanDensity    = 15000
	suburbanDensity = 5000

	// minAreaKm2 floors the measured area so that boundaries flattened
	// against the city edge do not produce absurd densities.
	minAreaKm2 = 0.5
)

// Grid zones and their baseline load percentages.
var (
	GridZones    = []string{"ZONE-A", "ZONE-B", "ZONE-C", "ZONE-D", "ZONE-E"}
	zoneBaseLoad = map[string]float64{
		"ZONE-A": 75,
		"ZONE-B": 82,
		"ZONE-C": 68,
		"ZONE-D": 78,
		"ZONE-E": 71,
	}
)

// WeatherStats summarises a weather enrichment pass.
type WeatherStats struct {
	Predicted int
}

// GenerateWeather emits three rows per light, one per season, in light order.
func GenerateWeather(rng *rand.Rand, lights []StreetLight, model RiskModel, asOf time.Time) ([]WeatherEnrichment, WeatherStats) {
	out := make([]WeatherEnrichment, 0, len(lights)*len(Seasons))
	var stats WeatherStats
	for i := range lights {
		for _, season := range Seasons {
			w := model.SeasonRisk(rng, lights[i], season, asOf)
			if w.PredictedFailureDate != nil {
				stats.Predicted++
			}
			out = append(out, w)
		}
	}
	return out, stats
}

// Classify maps a population density to its urban classification.
func Classify(density int) string {
	switch {
	case density > urbanDensity:
		return ClassUrban
	case density > suburbanDensity:
		return ClassSuburban
	default:
		return ClassRural
	}
}

// GenerateDemographics derives population density from each neighborhood's
// geodesic boundary area. With the default city bounds and 50 neighborhoods
// the cells measure roughly 2.5 to 5.5 km², so nearly every neighborhood
// classifies as urban; larger bounds or fewer neighborhoods shift the mix
// toward suburban and rural.
func GenerateDemographics(neighborhoods []Neighborhood) []DemographicsEnrichment {
	out := make([]DemographicsEnrichment, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		area := max(minAreaKm2, geo.AreaKm2(n.Boundary))
		density := int(float64(n.Population) / area)
		out = append(out, DemographicsEnrichment{
			NeighborhoodID:      n.ID,
			PopulationDensity:   density,
			UrbanClassification: Classify(density),
		})
	}
	return out
}

// ZoneFor assigns a light to a grid zone by its sequence number, so zones
// stay stable across reruns of the enrichment stage.
func ZoneFor(lightID string) (string, error) {
	n, err := IDNumber(lightID)
	if err != nil {
		return "", err
	}
	return GridZones[n%len(GridZones)], nil
}

// OutageCount draws the historical outage count for a load level; overloaded
// feeders fail more often.
func OutageCount(rng *rand.Rand, loadPercent float64) int {
	switch {
	case loadPercent > 80:
		return 3 + rng.Intn(6)
	case loadPercent > 75:
		return 1 + rng.Intn(4)
	default:
		return rng.Intn(3)
	}
}

// GeneratePowerGrid emits one grid row per light.
func GeneratePowerGrid(rng *rand.Rand, lights []StreetLight) ([]PowerGridEnrichment, error) {
	out := make([]PowerGridEnrichment, 0, len(lights))
	for i := range lights {
		zone, err := ZoneFor(lights[i].ID)
		if err != nil {
			return nil, fmt.Errorf("power grid: %w", err)
		}
		load := round2(zoneBaseLoad[zone] + uniformSym(rng, 5))
		out = append(out, PowerGridEnrichment{
			LightID:            lights[i].ID,
			GridZone:           zone,
			AvgLoadPercent:     load,
			OutageHistoryCount: OutageCount(rng, load),
		})
	}
	return out, nil
}
