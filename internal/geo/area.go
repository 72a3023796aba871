package geo

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used to scale steradians to km².
const EarthRadiusKm = 6371.0088

// AreaKm2 returns the geodesic area of the polygon's outer ring in square
// kilometres. Rings with fewer than three distinct vertices have zero area.
func AreaKm2(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}

	ring := p[0]
	pts := make([]s2.Point, 0, len(ring))
	var prev orb.Point
	for i, v := range ring {
		if i == len(ring)-1 && len(ring) > 1 && v.Equal(ring[0]) {
			break
		}
		if i > 0 && v.Equal(prev) {
			continue
		}
		prev = v
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(v.Lat(), v.Lon())))
	}
	if len(pts) < 3 {
		return 0
	}

	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop.Area() * EarthRadiusKm * EarthRadiusKm
}
