package domain

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Default city window and counts.
var (
	DefaultBounds = orb.Bound{Min: orb.Point{77.5, 12.8}, Max: orb.Point{77.7, 13.1}}
	DefaultCenter = orb.Point{77.5946, 12.9716}
)

const (
	DefaultNeighborhoodCount = 50
	DefaultLightCount        = 5000
	DefaultSupplierCount     = 25

	// DefaultClusterSigma is the standard deviation in degrees of the
	// downtown supplier cluster.
	DefaultClusterSigma = 0.05
)

// Params collects the knobs of a generation run.
type Params struct {
	NeighborhoodCount int
	LightCount        int
	SupplierCount     int
	Bounds            orb.Bound
	Center            orb.Point
	ClusterSigma      float64
	Risk              RiskModel
}

// DefaultParams returns the Bengaluru demo configuration.
func DefaultParams() Params {
	return Params{
		NeighborhoodCount: DefaultNeighborhoodCount,
		LightCount:        DefaultLightCount,
		SupplierCount:     DefaultSupplierCount,
		Bounds:            DefaultBounds,
		Center:            DefaultCenter,
		ClusterSigma:      DefaultClusterSigma,
		Risk:              DefaultRiskModel(),
	}
}

// Validate rejects parameter sets the generators cannot honor.
func (p Params) Validate() error {
	if p.NeighborhoodCount < 1 {
		return errors.New("neighborhood count must be positive")
	}
	if p.LightCount < p.NeighborhoodCount {
		return fmt.Errorf("light count %d is below neighborhood count %d", p.LightCount, p.NeighborhoodCount)
	}
	if p.SupplierCount < 0 {
		return errors.New("supplier count must not be negative")
	}
	if p.Bounds.Max.X() <= p.Bounds.Min.X() || p.Bounds.Max.Y() <= p.Bounds.Min.Y() {
		return errors.New("bounds must have positive width and height")
	}
	if !p.Bounds.Contains(p.Center) {
		return errors.New("center must lie inside bounds")
	}
	if p.ClusterSigma <= 0 {
		return errors.New("cluster sigma must be positive")
	}
	return p.Risk.Validate()
}
