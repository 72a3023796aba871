package config

import (
	"fmt"
	"os"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// paramsFile is the YAML layout of PARAMS_FILE. Absent keys keep their
// defaults; environment variables override the file.
type paramsFile struct {
	Neighborhoods        *int     `yaml:"neighborhoods"`
	Lights               *int     `yaml:"lights"`
	Suppliers            *int     `yaml:"suppliers"`
	SupplierClusterSigma *float64 `yaml:"supplier_cluster_sigma"`
	City                 cityDef  `yaml:"city"`
	Risk                 riskDef  `yaml:"risk"`
}

type cityDef struct {
	Bounds []float64 `yaml:"bounds"` // min_lon, min_lat, max_lon, max_lat
	Center []float64 `yaml:"center"` // lon, lat
}

type riskDef struct {
	AgeCap              *float64 `yaml:"age_cap"`
	AgeHorizonDays      *float64 `yaml:"age_horizon_days"`
	MaintenanceBump     *float64 `yaml:"maintenance_bump"`
	PredictionThreshold *float64 `yaml:"prediction_threshold"`
	HorizonMinDays      *float64 `yaml:"horizon_min_days"`
	HorizonMaxDays      *float64 `yaml:"horizon_max_days"`
}

// loadParamsFile reads path and applies the keys it sets onto p.
func loadParamsFile(path string, p *domain.Params) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading PARAMS_FILE: %w", err)
	}

	var f paramsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing PARAMS_FILE %s: %w", path, err)
	}

	setInt(&p.NeighborhoodCount, f.Neighborhoods)
	setInt(&p.LightCount, f.Lights)
	setInt(&p.SupplierCount, f.Suppliers)
	setFloat(&p.ClusterSigma, f.SupplierClusterSigma)

	if f.City.Bounds != nil {
		if len(f.City.Bounds) != 4 {
			return fmt.Errorf("PARAMS_FILE city.bounds: want 4 numbers, got %d", len(f.City.Bounds))
		}
		b := f.City.Bounds
		p.Bounds = orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}
	}
	if f.City.Center != nil {
		if len(f.City.Center) != 2 {
			return fmt.Errorf("PARAMS_FILE city.center: want 2 numbers, got %d", len(f.City.Center))
		}
		p.Center = orb.Point{f.City.Center[0], f.City.Center[1]}
	}

	setFloat(&p.Risk.AgeCap, f.Risk.AgeCap)
	setFloat(&p.Risk.AgeHorizonDays, f.Risk.AgeHorizonDays)
	setFloat(&p.Risk.MaintenanceBump, f.Risk.MaintenanceBump)
	setFloat(&p.Risk.PredictionThreshold, f.Risk.PredictionThreshold)
	setFloat(&p.Risk.HorizonMinDays, f.Risk.HorizonMinDays)
	setFloat(&p.Risk.HorizonMaxDays, f.Risk.HorizonMaxDays)
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
