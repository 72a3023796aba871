package domain

import (
	"strconv"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
)

// Table names double as CSV file stems and Kafka topic suffixes.
const (
	TableNeighborhoods = "neighborhoods"
	TableStreetLights  = "street_lights"
	TableSuppliers     = "suppliers"
	TableWeather       = "weather_enrichment"
	TableDemographics  = "demographics_enrichment"
	TablePowerGrid     = "power_grid_enrichment"
)

// Date and datetime layouts of the tabular contract.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Headers lists each table's columns in contract order.
var Headers = map[string][]string{
	TableNeighborhoods: {"neighborhood_id", "name", "boundary", "population"},
	TableStreetLights:  {"light_id", "location", "status", "wattage", "installation_date", "last_maintenance", "neighborhood_id"},
	TableSuppliers:     {"supplier_id", "name", "location", "contact_phone", "service_radius_km", "avg_response_hours", "specialization"},
	TableWeather:       {"light_id", "season", "avg_temperature_c", "rainfall_mm", "failure_risk_score", "predicted_failure_date"},
	TableDemographics:  {"neighborhood_id", "population_density", "urban_classification"},
	TablePowerGrid:     {"light_id", "grid_zone", "avg_load_percent", "outage_history_count"},
}

// TableOrder is the order tables are written in, parents before children.
var TableOrder = []string{
	TableNeighborhoods, TableStreetLights, TableSuppliers,
	TableWeather, TableDemographics, TablePowerGrid,
}

// Row is one record rendered as strings in its table's column order.
type Row interface {
	Key() string
	Values() []string
}

// Table is a named, ordered set of rows ready for a sink.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// NewTable wraps typed records as a Table.
func NewTable[T Row](name string, records []T) Table {
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = records[i]
	}
	return Table{Name: name, Header: Headers[name], Rows: rows}
}

// Record returns row i as a column-to-value map.
func (t Table) Record(i int) map[string]string {
	values := t.Rows[i].Values()
	m := make(map[string]string, len(t.Header))
	for j, col := range t.Header {
		m[col] = values[j]
	}
	return m
}

// Dataset holds the tables produced by one run. Nil slices were not produced
// by the run and are skipped by Tables.
type Dataset struct {
	Neighborhoods []Neighborhood
	Lights        []StreetLight
	Suppliers     []Supplier
	Weather       []WeatherEnrichment
	Demographics  []DemographicsEnrichment
	PowerGrid     []PowerGridEnrichment
}

// Tables returns the produced tables in TableOrder.
func (d Dataset) Tables() []Table {
	var out []Table
	if d.Neighborhoods != nil {
		out = append(out, NewTable(TableNeighborhoods, d.Neighborhoods))
	}
	if d.Lights != nil {
		out = append(out, NewTable(TableStreetLights, d.Lights))
	}
	if d.Suppliers != nil {
		out = append(out, NewTable(TableSuppliers, d.Suppliers))
	}
	if d.Weather != nil {
		out = append(out, NewTable(TableWeather, d.Weather))
	}
	if d.Demographics != nil {
		out = append(out, NewTable(TableDemographics, d.Demographics))
	}
	if d.PowerGrid != nil {
		out = append(out, NewTable(TablePowerGrid, d.PowerGrid))
	}
	return out
}

func (n Neighborhood) Key() string { return n.ID }

func (n Neighborhood) Values() []string {
	return []string{n.ID, n.Name, geo.PolygonWKT(n.Boundary), strconv.Itoa(n.Population)}
}

func (l StreetLight) Key() string { return l.ID }

func (l StreetLight) Values() []string {
	return []string{
		l.ID,
		geo.PointWKT(l.Location),
		string(l.Status),
		strconv.Itoa(l.Wattage),
		l.InstalledOn.Format(DateLayout),
		l.LastMaintenance.Format(DateTimeLayout),
		l.NeighborhoodID,
	}
}

func (s Supplier) Key() string { return s.ID }

func (s Supplier) Values() []string {
	return []string{
		s.ID,
		s.Name,
		geo.PointWKT(s.Location),
		s.ContactPhone,
		strconv.Itoa(s.ServiceRadiusKm),
		strconv.Itoa(s.AvgResponseHours),
		s.Specialization,
	}
}

func (w WeatherEnrichment) Key() string { return w.LightID + "/" + string(w.Season) }

func (w WeatherEnrichment) Values() []string {
	return []string{
		w.LightID,
		string(w.Season),
		formatFloat(w.AvgTemperatureC),
		formatFloat(w.RainfallMm),
		formatFloat(w.FailureRiskScore),
		formatOptionalDate(w.PredictedFailureDate),
	}
}

func (d DemographicsEnrichment) Key() string { return d.NeighborhoodID }

func (d DemographicsEnrichment) Values() []string {
	return []string{d.NeighborhoodID, strconv.Itoa(d.PopulationDensity), d.UrbanClassification}
}

func (p PowerGridEnrichment) Key() string { return p.LightID }

func (p PowerGridEnrichment) Values() []string {
	return []string{p.LightID, p.GridZone, formatFloat(p.AvgLoadPercent), strconv.Itoa(p.OutageHistoryCount)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// RunInfo identifies the run that produced a set of tables.
type RunInfo struct {
	ID          string
	Stage       string
	GeneratedAt time.Time
}
