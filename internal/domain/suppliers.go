package domain

import (
	"fmt"
	"math/rand"

	"github.com/couchcryptid/streetlight-datagen/internal/geo"
	"github.com/jaswdr/faker"
	"github.com/paulmach/orb"
)

// clusterShare is the probability that a supplier is drawn from the downtown
// cluster instead of uniformly over the city.
const clusterShare = 0.4

// supplierNames are fictitious vendors. Any resemblance to real companies is
// coincidental.
var supplierNames = []string{
	"Acme Lights & Co.",
	"BrightBeam Systems Demo",
	"CloudGlow Innovations",
	"DeltaLux Technologies",
	"EchoLight Solutions Demo",
	"FusionBright Industries",
	"GammaWatt Distributors",
	"HorizonLED Technologies",
	"InfinityLight Demo Corp",
	"JetStream Illumination",
	"KryptoLux Systems",
	"LumiFlex Technologies Demo",
	"MegaBeam Industries",
	"NovaSpark Lighting Co.",
	"OmegaBright Solutions",
	"PixelGlow Technologies",
	"QuantumLight Demo Inc",
	"RadiantEdge Systems",
	"StellarBeam Technologies",
	"TitanLux Industries Demo",
	"UltraGlow Solutions",
	"VortexLight Systems",
	"WarpSpeed Illumination",
	"XenonBright Technologies",
	"ZenithLight Demo Corp",
	"AlphaLux Enterprises",
	"BetaBeam Industries",
	"CrystalGlow Solutions Demo",
	"DynamicLight Systems",
	"EliteBeam Technologies Demo",
}

// Supplier catalogs.
var (
	ServiceRadiiKm    = []int{5, 8, 10, 12, 15}
	ResponseHours     = []int{2, 3, 4, 5, 6, 8}
	Specializations   = []string{"LED", "Sodium Vapor", "All"}
	specializationMix = []float64{4, 2, 4}
)

// PlaceSupplier draws a supplier location from the two-component mixture:
// a Gaussian around center with probability 0.4, otherwise uniform over
// bounds. The result is clamped into bounds.
func PlaceSupplier(rng *rand.Rand, bounds orb.Bound, center orb.Point, sigma float64) orb.Point {
	var pt orb.Point
	if rng.Float64() < clusterShare {
		pt = geo.GaussianPoint(rng, center, sigma)
	} else {
		pt = geo.UniformPoint(rng, bounds)
	}
	return geo.Clamp(bounds, pt)
}

// GenerateSuppliers builds n suppliers. Suppliers carry no neighborhood
// reference; proximity is a downstream concern.
func GenerateSuppliers(rng *rand.Rand, n int, bounds orb.Bound, center orb.Point, sigma float64) ([]Supplier, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: supplier count %d", ErrInvalidArgument, n)
	}

	var fake *faker.Faker
	out := make([]Supplier, 0, n)
	for i := range n {
		name := ""
		if i < len(supplierNames) {
			name = supplierNames[i]
		} else {
			if fake == nil {
				f := faker.NewWithSeed(rng)
				fake = &f
			}
			name = fake.Company().Name() + " Demo"
		}

		out = append(out, Supplier{
			ID:               SupplierID(i + 1),
			Name:             name,
			Location:         PlaceSupplier(rng, bounds, center, sigma),
			ContactPhone:     fmt.Sprintf("+91-80-%d", 20_000_000+rng.Intn(80_000_000)),
			ServiceRadiusKm:  Choice(rng, ServiceRadiiKm),
			AvgResponseHours: Choice(rng, ResponseHours),
			Specialization:   WeightedChoice(rng, Specializations, specializationMix),
		})
	}
	return out, nil
}
