package geo

import (
	"math/rand"

	"github.com/paulmach/orb"
)

// MaxSampleAttempts bounds the rejection loop in SamplePoint.
const MaxSampleAttempts = 100

// SamplePoint draws a point uniformly from the interior of p by rejection
// sampling over its bounding box. After MaxSampleAttempts misses it returns
// the centroid and false, so callers can count fallbacks without handling an
// error.
func SamplePoint(rng *rand.Rand, p orb.Polygon) (orb.Point, bool) {
	b := p.Bound()
	for range MaxSampleAttempts {
		pt := orb.Point{
			uniform(rng, b.Min.X(), b.Max.X()),
			uniform(rng, b.Min.Y(), b.Max.Y()),
		}
		if Contains(p, pt) {
			return pt, true
		}
	}
	return Centroid(p), false
}

// UniformPoint draws a point uniformly from b.
func UniformPoint(rng *rand.Rand, b orb.Bound) orb.Point {
	return orb.Point{
		uniform(rng, b.Min.X(), b.Max.X()),
		uniform(rng, b.Min.Y(), b.Max.Y()),
	}
}

// GaussianPoint draws a point from an axis-aligned normal distribution around
// center with standard deviation sigma degrees on both axes.
func GaussianPoint(rng *rand.Rand, center orb.Point, sigma float64) orb.Point {
	return orb.Point{
		center.X() + rng.NormFloat64()*sigma,
		center.Y() + rng.NormFloat64()*sigma,
	}
}
