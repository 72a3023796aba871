package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
)

// ErrMalformedRecord marks a tabular record that cannot be loaded. Loading is
// all-or-nothing: callers abort on the first malformed row.
var ErrMalformedRecord = errors.New("malformed record")

// field fetches a required, trimmed column.
func field(rec map[string]string, col string) (string, error) {
	v, ok := rec[col]
	if !ok {
		return "", fmt.Errorf("%w: missing column %q", ErrMalformedRecord, col)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: empty %s", ErrMalformedRecord, col)
	}
	return v, nil
}

func intField(rec map[string]string, col string) (int, error) {
	s, err := field(rec, col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrMalformedRecord, col, s)
	}
	return n, nil
}

func floatField(rec map[string]string, col string) (float64, error) {
	s, err := field(rec, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrMalformedRecord, col, s)
	}
	return v, nil
}

func timeField(rec map[string]string, col, layout string) (time.Time, error) {
	s, err := field(rec, col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q: %w", ErrMalformedRecord, col, s, err)
	}
	return t, nil
}

// ParseNeighborhood loads a neighborhoods.csv record.
func ParseNeighborhood(rec map[string]string) (Neighborhood, error) {
	id, err := field(rec, "neighborhood_id")
	if err != nil {
		return Neighborhood{}, err
	}
	name, err := field(rec, "name")
	if err != nil {
		return Neighborhood{}, err
	}
	raw, err := field(rec, "boundary")
	if err != nil {
		return Neighborhood{}, err
	}
	boundary, err := geo.ParsePolygon(raw)
	if err != nil {
		return Neighborhood{}, fmt.Errorf("%w: %s boundary: %w", ErrMalformedRecord, id, err)
	}
	pop, err := intField(rec, "population")
	if err != nil {
		return Neighborhood{}, err
	}
	if pop <= 0 {
		return Neighborhood{}, fmt.Errorf("%w: %s population %d is not positive", ErrMalformedRecord, id, pop)
	}
	return Neighborhood{ID: id, Name: name, Boundary: boundary, Population: pop}, nil
}

// ParseStreetLight loads a street_lights.csv record.
func ParseStreetLight(rec map[string]string) (StreetLight, error) {
	id, err := field(rec, "light_id")
	if err != nil {
		return StreetLight{}, err
	}
	rawLoc, err := field(rec, "location")
	if err != nil {
		return StreetLight{}, err
	}
	loc, err := geo.ParsePoint(rawLoc)
	if err != nil {
		return StreetLight{}, fmt.Errorf("%w: %s location: %w", ErrMalformedRecord, id, err)
	}
	rawStatus, err := field(rec, "status")
	if err != nil {
		return StreetLight{}, err
	}
	status, ok := ParseStatus(rawStatus)
	if !ok {
		return StreetLight{}, fmt.Errorf("%w: %s has unknown status %q", ErrMalformedRecord, id, rawStatus)
	}
	wattage, err := intField(rec, "wattage")
	if err != nil {
		return StreetLight{}, err
	}
	installed, err := timeField(rec, "installation_date", DateLayout)
	if err != nil {
		return StreetLight{}, err
	}
	maintained, err := timeField(rec, "last_maintenance", DateTimeLayout)
	if err != nil {
		return StreetLight{}, err
	}
	nh, err := field(rec, "neighborhood_id")
	if err != nil {
		return StreetLight{}, err
	}
	return StreetLight{
		ID:              id,
		Location:        loc,
		Status:          status,
		Wattage:         wattage,
		InstalledOn:     installed,
		LastMaintenance: maintained,
		NeighborhoodID:  nh,
	}, nil
}

// ParseSupplier loads a suppliers.csv record.
func ParseSupplier(rec map[string]string) (Supplier, error) {
	var s Supplier
	var err error
	if s.ID, err = field(rec, "supplier_id"); err != nil {
		return Supplier{}, err
	}
	if s.Name, err = field(rec, "name"); err != nil {
		return Supplier{}, err
	}
	rawLoc, err := field(rec, "location")
	if err != nil {
		return Supplier{}, err
	}
	if s.Location, err = geo.ParsePoint(rawLoc); err != nil {
		return Supplier{}, fmt.Errorf("%w: %s location: %w", ErrMalformedRecord, s.ID, err)
	}
	if s.ContactPhone, err = field(rec, "contact_phone"); err != nil {
		return Supplier{}, err
	}
	if s.ServiceRadiusKm, err = intField(rec, "service_radius_km"); err != nil {
		return Supplier{}, err
	}
	if s.AvgResponseHours, err = intField(rec, "avg_response_hours"); err != nil {
		return Supplier{}, err
	}
	if s.Specialization, err = field(rec, "specialization"); err != nil {
		return Supplier{}, err
	}
	return s, nil
}

// ParseWeather loads a weather_enrichment.csv record. An empty predicted date
// means no prediction.
func ParseWeather(rec map[string]string) (WeatherEnrichment, error) {
	var w WeatherEnrichment
	var err error
	if w.LightID, err = field(rec, "light_id"); err != nil {
		return WeatherEnrichment{}, err
	}
	season, err := field(rec, "season")
	if err != nil {
		return WeatherEnrichment{}, err
	}
	if _, ok := SeasonProfiles[Season(season)]; !ok {
		return WeatherEnrichment{}, fmt.Errorf("%w: %s has unknown season %q", ErrMalformedRecord, w.LightID, season)
	}
	w.Season = Season(season)
	if w.AvgTemperatureC, err = floatField(rec, "avg_temperature_c"); err != nil {
		return WeatherEnrichment{}, err
	}
	if w.RainfallMm, err = floatField(rec, "rainfall_mm"); err != nil {
		return WeatherEnrichment{}, err
	}
	if w.FailureRiskScore, err = floatField(rec, "failure_risk_score"); err != nil {
		return WeatherEnrichment{}, err
	}
	if strings.TrimSpace(rec["predicted_failure_date"]) != "" {
		d, err := timeField(rec, "predicted_failure_date", DateLayout)
		if err != nil {
			return WeatherEnrichment{}, err
		}
		w.PredictedFailureDate = &d
	}
	return w, nil
}

// ParseDemographics loads a demographics_enrichment.csv record.
func ParseDemographics(rec map[string]string) (DemographicsEnrichment, error) {
	var d DemographicsEnrichment
	var err error
	if d.NeighborhoodID, err = field(rec, "neighborhood_id"); err != nil {
		return DemographicsEnrichment{}, err
	}
	if d.PopulationDensity, err = intField(rec, "population_density"); err != nil {
		return DemographicsEnrichment{}, err
	}
	if d.UrbanClassification, err = field(rec, "urban_classification"); err != nil {
		return DemographicsEnrichment{}, err
	}
	return d, nil
}

// ParsePowerGrid loads a power_grid_enrichment.csv record.
func ParsePowerGrid(rec map[string]string) (PowerGridEnrichment, error) {
	var p PowerGridEnrichment
	var err error
	if p.LightID, err = field(rec, "light_id"); err != nil {
		return PowerGridEnrichment{}, err
	}
	if p.GridZone, err = field(rec, "grid_zone"); err != nil {
		return PowerGridEnrichment{}, err
	}
	if p.AvgLoadPercent, err = floatField(rec, "avg_load_percent"); err != nil {
		return PowerGridEnrichment{}, err
	}
	if p.OutageHistoryCount, err = intField(rec, "outage_history_count"); err != nil {
		return PowerGridEnrichment{}, err
	}
	return p, nil
}
