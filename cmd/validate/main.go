// Command validate performs integrity checks over a generated street-light
// dataset directory: column contract, referential integrity, geometry,
// categorical distributions, and risk/date rules. Generation parameters are
// read from the same environment variables as lightgen.
//
// Usage:
//
//	go run ./cmd/validate -dir data -as-of 2024-06-15
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/adapter/csvfile"
	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/geo"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"
)

// maxReported caps the errors printed per phase.
const maxReported = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.OutputDir, "directory containing the generated CSV tables")
	asOfFlag := flag.String("as-of", time.Now().UTC().Format(domain.DateLayout), "generation date (YYYY-MM-DD)")
	flag.Parse()

	asOf, err := time.Parse(domain.DateLayout, *asOfFlag)
	if err != nil {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dir, asOf, cfg.Params))
}

func run(dir string, asOf time.Time, params domain.Params) int {
	fmt.Println("=== Street Light Dataset Validation ===")
	fmt.Println()

	schema := validateSchema(dir)
	if !schema.passed() {
		report([]*phase{schema})
		return 1
	}

	ds, err := csvfile.New(dir, slog.New(slog.DiscardHandler)).LoadDataset()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		schema,
		validateReferences(ds),
		validateGeometry(ds, params.Bounds),
		validateDistributions(ds),
		validateRiskAndDates(ds, params.Risk, asOf),
	}

	fmt.Printf("Records: %d neighborhoods, %d lights, %d suppliers, %d weather, %d demographics, %d power grid\n",
		len(ds.Neighborhoods), len(ds.Lights), len(ds.Suppliers), len(ds.Weather), len(ds.Demographics), len(ds.PowerGrid))
	printRiskStats(ds.Weather)

	if report(phases) {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// report prints the phase table and details, and reports whether all passed.
func report(phases []*phase) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

// ── Phase 1: Schema ──
// Every table exists with exactly the contract columns in order.

func validateSchema(dir string) *phase {
	p := &phase{name: "Phase 1: Schema (column contract)"}
	store := csvfile.New(dir, slog.New(slog.DiscardHandler))
	for _, table := range domain.TableOrder {
		header, _, err := csvfile.ReadTable(store.Path(table), nil)
		if err != nil {
			p.errorf("%s: %v", table, err)
			continue
		}
		if !slices.Equal(header, domain.Headers[table]) {
			p.errorf("%s: header %v, want %v", table, header, domain.Headers[table])
		}
	}
	return p
}

// ── Phase 2: Referential integrity ──

func validateReferences(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Referential integrity"}

	hoods := make(map[string]bool, len(ds.Neighborhoods))
	for _, n := range ds.Neighborhoods {
		if hoods[n.ID] {
			p.errorf("duplicate neighborhood %s", n.ID)
		}
		hoods[n.ID] = true
	}

	lights := make(map[string]bool, len(ds.Lights))
	perHood := map[string]int{}
	for _, l := range ds.Lights {
		if lights[l.ID] {
			p.errorf("duplicate light %s", l.ID)
		}
		lights[l.ID] = true
		if !hoods[l.NeighborhoodID] {
			p.errorf("light %s references unknown neighborhood %s", l.ID, l.NeighborhoodID)
		}
		perHood[l.NeighborhoodID]++
	}
	for _, n := range ds.Neighborhoods {
		if perHood[n.ID] == 0 {
			p.errorf("neighborhood %s has no lights", n.ID)
		}
	}

	seasons := map[string]map[domain.Season]int{}
	for _, w := range ds.Weather {
		if !lights[w.LightID] {
			p.errorf("weather row references unknown light %s", w.LightID)
			continue
		}
		if seasons[w.LightID] == nil {
			seasons[w.LightID] = map[domain.Season]int{}
		}
		seasons[w.LightID][w.Season]++
	}
	for _, l := range ds.Lights {
		for _, s := range domain.Seasons {
			if c := seasons[l.ID][s]; c != 1 {
				p.errorf("light %s has %d %s weather rows, want 1", l.ID, c, s)
			}
		}
	}

	demo := map[string]bool{}
	for _, d := range ds.Demographics {
		if !hoods[d.NeighborhoodID] {
			p.errorf("demographics row references unknown neighborhood %s", d.NeighborhoodID)
		}
		demo[d.NeighborhoodID] = true
	}
	if len(demo) != len(hoods) {
		p.errorf("demographics covers %d of %d neighborhoods", len(demo), len(hoods))
	}

	grid := map[string]bool{}
	for _, g := range ds.PowerGrid {
		if !lights[g.LightID] {
			p.errorf("power grid row references unknown light %s", g.LightID)
		}
		grid[g.LightID] = true
	}
	if len(grid) != len(lights) {
		p.errorf("power grid covers %d of %d lights", len(grid), len(lights))
	}
	return p
}

// ── Phase 3: Geometry ──

func validateGeometry(ds domain.Dataset, bounds orb.Bound) *phase {
	p := &phase{name: "Phase 3: Geometry (containment, bounds)"}

	hoods := make(map[string]domain.Neighborhood, len(ds.Neighborhoods))
	for _, n := range ds.Neighborhoods {
		hoods[n.ID] = n
		if err := geo.Validate(n.Boundary); err != nil {
			p.errorf("%s boundary: %v", n.ID, err)
			continue
		}
		if v := len(n.Boundary[0]) - 1; v < geo.MinVertices || v > geo.MaxVertices {
			p.errorf("%s boundary has %d vertices", n.ID, v)
		}
		if !geo.WithinBound(n.Boundary, bounds) {
			p.errorf("%s boundary leaves the city bounds", n.ID)
		}
	}

	for _, l := range ds.Lights {
		n, ok := hoods[l.NeighborhoodID]
		if !ok {
			continue
		}
		if !geo.Contains(n.Boundary, l.Location) && l.Location != geo.Centroid(n.Boundary) {
			p.errorf("light %s at %v lies outside %s", l.ID, l.Location, n.ID)
		}
	}

	for _, s := range ds.Suppliers {
		if !geo.InBound(bounds, s.Location) {
			p.errorf("supplier %s at %v is outside the city bounds", s.ID, s.Location)
		}
	}
	return p
}

// ── Phase 4: Distributions ──

// statusShare is the pool composition per 1000 lights.
var statusShare = map[domain.Status]int{
	domain.StatusOperational:         850,
	domain.StatusMaintenanceRequired: 100,
	domain.StatusFaulty:              50,
}

func validateDistributions(ds domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Distributions (ratios, catalogs)"}

	counts := map[domain.Status]int{}
	for _, l := range ds.Lights {
		counts[l.Status]++
		if !slices.Contains(domain.Wattages, l.Wattage) {
			p.errorf("light %s has wattage %d", l.ID, l.Wattage)
		}
	}
	// A partial pass over the pool can skew a label by at most its pool size.
	n := len(ds.Lights)
	for status, share := range statusShare {
		want := float64(n) * float64(share) / 1000
		if math.Abs(float64(counts[status])-want) > float64(share) {
			p.errorf("%d %s lights, want %.0f ± %d", counts[status], status, want, share)
		}
		if n%1000 == 0 && counts[status] != n/1000*share {
			p.errorf("%d %s lights, want exactly %d", counts[status], status, n/1000*share)
		}
	}

	for _, s := range ds.Suppliers {
		if !slices.Contains(domain.Specializations, s.Specialization) {
			p.errorf("supplier %s has specialization %q", s.ID, s.Specialization)
		}
		if !slices.Contains(domain.ServiceRadiiKm, s.ServiceRadiusKm) {
			p.errorf("supplier %s has service radius %d", s.ID, s.ServiceRadiusKm)
		}
		if !slices.Contains(domain.ResponseHours, s.AvgResponseHours) {
			p.errorf("supplier %s has response time %d", s.ID, s.AvgResponseHours)
		}
	}

	for _, d := range ds.Demographics {
		if want := domain.Classify(d.PopulationDensity); d.UrbanClassification != want {
			p.errorf("%s classified %s at density %d, want %s", d.NeighborhoodID, d.UrbanClassification, d.PopulationDensity, want)
		}
	}

	for _, g := range ds.PowerGrid {
		zone, err := domain.ZoneFor(g.LightID)
		if err != nil {
			p.errorf("power grid %s: %v", g.LightID, err)
			continue
		}
		if g.GridZone != zone {
			p.errorf("light %s in %s, want %s", g.LightID, g.GridZone, zone)
		}
		if g.OutageHistoryCount < 0 || g.OutageHistoryCount > 8 {
			p.errorf("light %s has %d outages", g.LightID, g.OutageHistoryCount)
		}
	}
	return p
}

// ── Phase 5: Risk & dates ──

func validateRiskAndDates(ds domain.Dataset, model domain.RiskModel, asOf time.Time) *phase {
	p := &phase{name: "Phase 5: Risk scores and dates"}
	horizon := asOf.AddDate(0, 0, int(model.HorizonMaxDays))

	lights := make(map[string]domain.StreetLight, len(ds.Lights))
	for _, l := range ds.Lights {
		lights[l.ID] = l
		if l.LastMaintenance.Before(l.InstalledOn) {
			p.errorf("light %s maintained %s before installation %s", l.ID,
				l.LastMaintenance.Format(domain.DateTimeLayout), l.InstalledOn.Format(domain.DateLayout))
		}
		if l.InstalledOn.After(asOf) || l.LastMaintenance.After(asOf) {
			p.errorf("light %s has dates after %s", l.ID, asOf.Format(domain.DateLayout))
		}
	}

	for _, w := range ds.Weather {
		if w.FailureRiskScore < 0 || w.FailureRiskScore > model.Ceiling {
			p.errorf("%s %s risk %.2f outside [0, %.2f]", w.LightID, w.Season, w.FailureRiskScore, model.Ceiling)
		}
		prof := domain.SeasonProfiles[w.Season]
		if w.AvgTemperatureC < prof.Temperature.Min || w.AvgTemperatureC > prof.Temperature.Max {
			p.errorf("%s %s temperature %.2f outside season range", w.LightID, w.Season, w.AvgTemperatureC)
		}
		if w.RainfallMm < prof.Rainfall.Min || w.RainfallMm > prof.Rainfall.Max {
			p.errorf("%s %s rainfall %.2f outside season range", w.LightID, w.Season, w.RainfallMm)
		}

		l, ok := lights[w.LightID]
		if !ok {
			continue
		}
		want := model.Predicts(l.Status, w.FailureRiskScore)
		got := w.PredictedFailureDate != nil
		if want != got {
			p.errorf("%s %s (%s, risk %.2f): predicted=%t, want %t", w.LightID, w.Season, l.Status, w.FailureRiskScore, got, want)
		}
		if got && (w.PredictedFailureDate.Before(asOf) || w.PredictedFailureDate.After(horizon)) {
			p.errorf("%s %s predicted failure %s outside [%s, %s]", w.LightID, w.Season,
				w.PredictedFailureDate.Format(domain.DateLayout), asOf.Format(domain.DateLayout), horizon.Format(domain.DateLayout))
		}
	}
	return p
}

// printRiskStats prints mean and standard deviation of the risk score per
// season, plus the share of rows with a prediction.
func printRiskStats(weather []domain.WeatherEnrichment) {
	scores := map[domain.Season][]float64{}
	predicted := 0
	for _, w := range weather {
		scores[w.Season] = append(scores[w.Season], w.FailureRiskScore)
		if w.PredictedFailureDate != nil {
			predicted++
		}
	}

	seasons := make([]string, 0, len(scores))
	for s := range scores {
		seasons = append(seasons, string(s))
	}
	sort.Strings(seasons)

	fmt.Println()
	fmt.Println("Failure risk by season:")
	for _, s := range seasons {
		mean, std := stat.MeanStdDev(scores[domain.Season(s)], nil)
		fmt.Printf("  %-8s n=%-6d mean=%.3f stddev=%.3f\n", s, len(scores[domain.Season(s)]), mean, std)
	}
	if len(weather) > 0 {
		fmt.Printf("  predicted failures: %d of %d rows (%.1f%%)\n", predicted, len(weather), 100*float64(predicted)/float64(len(weather)))
	}
}
