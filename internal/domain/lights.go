package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
)

// Status pool ratio: 85% operational, 10% maintenance_required, 5% faulty.
var (
	statusLabels = []Status{StatusOperational, StatusMaintenanceRequired, StatusFaulty}
	statusRatio  = []int{850, 100, 50}
)

// Wattages is the catalog of lamp wattages.
var Wattages = []int{100, 150, 200, 250}

const (
	minAgeDays            = 365
	maxAgeDays            = 365 * 10
	minMaintenanceDaysAgo = 30
	maintenanceHourOfDay  = 12
)

// LightStats reports how lights were placed.
type LightStats struct {
	PerNeighborhood map[string]int
	// CentroidFallbacks counts lights placed on a centroid after the
	// rejection sampler gave up.
	CentroidFallbacks int
}

// GenerateStreetLights places total lights across neighborhoods in proportion
// to population. Each light lies inside its neighborhood (or on its centroid
// when sampling is exhausted) and is numbered SL-0001 onwards in neighborhood
// order. Dates are relative to asOf.
func GenerateStreetLights(rng *rand.Rand, neighborhoods []Neighborhood, total int, asOf time.Time) ([]StreetLight, LightStats, error) {
	weights := make([]int, len(neighborhoods))
	for i, n := range neighborhoods {
		weights[i] = n.Population
	}
	counts, err := Apportion(total, weights)
	if err != nil {
		return nil, LightStats{}, fmt.Errorf("allocate lights: %w", err)
	}

	statuses, err := NewStratifiedPool(rng, statusLabels, statusRatio)
	if err != nil {
		return nil, LightStats{}, err
	}

	today := dateOf(asOf)
	stats := LightStats{PerNeighborhood: make(map[string]int, len(neighborhoods))}
	lights := make([]StreetLight, 0, total)

	for i, n := range neighborhoods {
		for range counts[i] {
			seq := len(lights) + 1

			loc, ok := geo.SamplePoint(rng, n.Boundary)
			if !ok {
				stats.CentroidFallbacks++
			}

			wattage := Choice(rng, Wattages)

			ageDays := minAgeDays + rng.Intn(maxAgeDays-minAgeDays+1)
			maintDaysAgo := minMaintenanceDaysAgo + rng.Intn(ageDays-minMaintenanceDaysAgo+1)

			lights = append(lights, StreetLight{
				ID:              LightID(seq),
				Location:        loc,
				Status:          statuses.At(seq - 1),
				Wattage:         wattage,
				InstalledOn:     today.AddDate(0, 0, -ageDays),
				LastMaintenance: today.AddDate(0, 0, -maintDaysAgo).Add(maintenanceHourOfDay * time.Hour),
				NeighborhoodID:  n.ID,
			})
		}
		stats.PerNeighborhood[n.ID] = counts[i]
	}

	return lights, stats, nil
}
