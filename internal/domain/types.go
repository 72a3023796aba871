package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Status is the operational state of a street light.
type Status string

const (
	StatusOperational         Status = "operational"
	StatusMaintenanceRequired Status = "maintenance_required"
	StatusFaulty              Status = "faulty"
)

// ParseStatus validates a status label.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOperational, StatusMaintenanceRequired, StatusFaulty:
		return Status(s), true
	default:
		return "", false
	}
}

// Season discriminates the three weather rows emitted per light.
type Season string

const (
	SeasonMonsoon Season = "monsoon"
	SeasonSummer  Season = "summer"
	SeasonWinter  Season = "winter"
)

// Seasons lists the seasons in output order.
var Seasons = []Season{SeasonMonsoon, SeasonSummer, SeasonWinter}

// Neighborhood is an administrative area with an irregular boundary.
type Neighborhood struct {
	ID         string
	Name       string
	Boundary   orb.Polygon
	Population int
}

// StreetLight is a single light pole located inside its neighborhood.
type StreetLight struct {
	ID              string
	Location        orb.Point
	Status          Status
	Wattage         int
	InstalledOn     time.Time // date only, UTC midnight
	LastMaintenance time.Time
	NeighborhoodID  string
}

// Supplier is a light equipment vendor somewhere in the city window.
type Supplier struct {
	ID               string
	Name             string
	Location         orb.Point
	ContactPhone     string
	ServiceRadiusKm  int
	AvgResponseHours int
	Specialization   string
}

// WeatherEnrichment is the per-season weather exposure and failure risk of a light.
type WeatherEnrichment struct {
	LightID              string
	Season               Season
	AvgTemperatureC      float64
	RainfallMm           float64
	FailureRiskScore     float64
	PredictedFailureDate *time.Time
}

// DemographicsEnrichment classifies a neighborhood by population density.
type DemographicsEnrichment struct {
	NeighborhoodID      string
	PopulationDensity   int // people per km²
	UrbanClassification string
}

// PowerGridEnrichment describes the grid zone feeding a light.
type PowerGridEnrichment struct {
	LightID            string
	GridZone           string
	AvgLoadPercent     float64
	OutageHistoryCount int
}
