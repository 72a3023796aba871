package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PolygonWKT encodes p as WKT, e.g. "POLYGON((77.51 12.83,...))".
func PolygonWKT(p orb.Polygon) string {
	return wkt.MarshalString(p)
}

// PointWKT encodes pt as WKT, e.g. "POINT(77.51 12.83)".
func PointWKT(pt orb.Point) string {
	return wkt.MarshalString(pt)
}

// ParsePolygon decodes a WKT polygon and checks it with Validate.
func ParsePolygon(s string) (orb.Polygon, error) {
	p, err := wkt.UnmarshalPolygon(s)
	if err != nil {
		return nil, fmt.Errorf("parse polygon wkt: %w", err)
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ParsePoint decodes a WKT point.
func ParsePoint(s string) (orb.Point, error) {
	pt, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parse point wkt: %w", err)
	}
	return pt, nil
}
