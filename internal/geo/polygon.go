// Package geo holds the planar geometry used to lay out neighborhoods and
// place lights: irregular polygon construction, containment, centroids,
// clamping into the city bound, and WKT encoding.
//
// Coordinates follow the WKT convention used by the CSV contract: X is
// longitude, Y is latitude, both in degrees. All containment math is planar
// on those degrees; only AreaKm2 works on the sphere.
package geo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Vertex count range for generated boundaries.
const (
	MinVertices = 5
	MaxVertices = 8
)

const (
	// minRadiusFactor and maxRadiusFactor bound the radial perturbation of
	// each vertex as a fraction of the nominal radius.
	minRadiusFactor = 0.7
	maxRadiusFactor = 1.0

	// angularJitter is the largest angular offset of a vertex as a fraction of
	// the angular step. Staying below 0.5 keeps vertices in angular order, so
	// the ring is star-shaped around its center and never self-intersects.
	angularJitter = 0.25
)

// ErrInvalidPolygon is returned by Validate for boundaries that do not form a
// usable closed ring.
var ErrInvalidPolygon = errors.New("invalid polygon")

// IrregularPolygon builds a closed ring of 5–8 vertices around center. The
// nominal radius is rx on the longitude axis and ry on the latitude axis; every
// vertex is clamped into within.
func IrregularPolygon(rng *rand.Rand, center orb.Point, rx, ry float64, within orb.Bound) orb.Polygon {
	n := MinVertices + rng.Intn(MaxVertices-MinVertices+1)
	step := 2 * math.Pi / float64(n)

	ring := make(orb.Ring, 0, n+1)
	for i := range n {
		angle := float64(i)*step + uniform(rng, -angularJitter, angularJitter)*step
		factor := uniform(rng, minRadiusFactor, maxRadiusFactor)
		p := orb.Point{
			center.X() + rx*factor*math.Cos(angle),
			center.Y() + ry*factor*math.Sin(angle),
		}
		ring = append(ring, Clamp(within, p))
	}
	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}

// Clamp moves p onto the nearest point of b when it falls outside.
func Clamp(b orb.Bound, p orb.Point) orb.Point {
	return orb.Point{
		math.Max(b.Min.X(), math.Min(b.Max.X(), p.X())),
		math.Max(b.Min.Y(), math.Min(b.Max.Y(), p.Y())),
	}
}

// Contains reports whether pt lies inside the polygon or on its boundary.
// Points inside a hole are outside.
func Contains(p orb.Polygon, pt orb.Point) bool {
	return planar.PolygonContains(p, pt)
}

// Centroid returns the area-weighted centroid of the polygon, or the vertex
// average for a degenerate ring.
func Centroid(p orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(p)
	return c
}

// InBound reports whether pt lies in b, edges included.
func InBound(b orb.Bound, pt orb.Point) bool {
	return b.Contains(pt)
}

// Validate checks that p has an outer ring that is closed and carries at least
// three distinct vertices.
func Validate(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidPolygon)
	}
	ring := p[0]
	if len(ring) < 4 {
		return fmt.Errorf("%w: %d points in outer ring", ErrInvalidPolygon, len(ring))
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		return fmt.Errorf("%w: outer ring is not closed", ErrInvalidPolygon)
	}

	distinct := make(map[orb.Point]struct{}, len(ring))
	for _, v := range ring[:len(ring)-1] {
		distinct[v] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%w: %d distinct vertices", ErrInvalidPolygon, len(distinct))
	}
	return nil
}

// WithinBound reports whether every vertex of p lies in b.
func WithinBound(p orb.Polygon, b orb.Bound) bool {
	for _, ring := range p {
		for _, v := range ring {
			if !b.Contains(v) {
				return false
			}
		}
	}
	return true
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
