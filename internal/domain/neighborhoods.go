package domain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
	"github.com/paulmach/orb"
)

const (
	minPopulation = 50_000
	maxPopulation = 200_000

	// centerJitter is the largest offset of a cell center as a fraction of
	// the cell size on each axis.
	centerJitter = 0.2

	// radiusScale is the nominal polygon radius as a fraction of the cell.
	radiusScale = 0.4
)

// neighborhoodNames are real Bengaluru localities used for the first
// neighborhoods; later ones are numbered.
var neighborhoodNames = []string{
	"Koramangala", "Indiranagar", "Whitefield", "Electronic City", "Jayanagar",
	"Malleshwaram", "Rajajinagar", "Banashankari", "BTM Layout", "HSR Layout",
	"Yelahanka", "Hebbal", "Marathahalli", "Bellandur", "Sarjapur",
	"JP Nagar", "Basavanagudi", "Richmond Town", "Frazer Town", "Shivajinagar",
	"Sadashivanagar", "RT Nagar", "Kalyan Nagar", "KR Puram", "Mahadevapura",
	"Bommanahalli", "Hoodi", "Brookefield", "Varthur", "Kadugodi",
	"Nagarbhavi", "Peenya", "Vijayanagar", "Yeshwantpur", "Mathikere",
	"Jalahalli", "Sanjay Nagar", "Kammanahalli", "Banaswadi", "Rammurthy Nagar",
	"CV Raman Nagar", "Domlur", "Ulsoor", "Cox Town", "Pulakeshi Nagar",
	"Bannerghatta", "Begur", "Arekere", "Hulimavu", "Uttarahalli",
}

// GridShape returns the columns and rows of the near-square grid that holds
// n cells: ceil(sqrt(n)) columns and as many rows as needed, so the last row
// may be partly empty.
func GridShape(n int) (cols, rows int) {
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// GenerateNeighborhoods lays n neighborhoods over bounds, one per grid cell in
// row-major order starting at the south-west corner.
func GenerateNeighborhoods(rng *rand.Rand, n int, bounds orb.Bound) ([]Neighborhood, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: neighborhood count %d", ErrInvalidArgument, n)
	}

	cols, rows := GridShape(n)
	lonStep := (bounds.Max.X() - bounds.Min.X()) / float64(cols)
	latStep := (bounds.Max.Y() - bounds.Min.Y()) / float64(rows)

	out := make([]Neighborhood, 0, n)
	for i := range n {
		row, col := i/cols, i%cols

		center := orb.Point{
			bounds.Min.X() + (float64(col)+0.5)*lonStep + uniformSym(rng, centerJitter*lonStep),
			bounds.Min.Y() + (float64(row)+0.5)*latStep + uniformSym(rng, centerJitter*latStep),
		}
		boundary := geo.IrregularPolygon(rng, center, radiusScale*lonStep, radiusScale*latStep, bounds)

		out = append(out, Neighborhood{
			ID:         NeighborhoodID(i + 1),
			Name:       neighborhoodName(i),
			Boundary:   boundary,
			Population: minPopulation + rng.Intn(maxPopulation-minPopulation+1),
		})
	}
	return out, nil
}

func neighborhoodName(i int) string {
	if i < len(neighborhoodNames) {
		return neighborhoodNames[i]
	}
	return fmt.Sprintf("Neighborhood %d", i+1)
}

// uniformSym draws uniformly from [-span, span].
func uniformSym(rng *rand.Rand, span float64) float64 {
	return (rng.Float64()*2 - 1) * span
}
