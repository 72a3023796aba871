// Package domain generates the street-light seed dataset: neighborhoods,
// street lights, suppliers, and the weather, demographics, and power-grid
// enrichment tables derived from them.
//
// # Randomness
//
// Every generator takes an explicit *rand.Rand. Nothing in this package reads
// a process-wide source, so a caller that seeds the generator gets the same
// dataset back for the same inputs and generation date.
//
// # Identifiers
//
//	Neighborhood  NH-###    (NH-001, NH-002, ...)
//	Street light  SL-####   assigned in generation order, never reused
//	Supplier      SUP-###
//
// Widths are minimums; counts beyond the width simply grow the number.
//
// # Coordinates
//
// Points are orb.Point values in (longitude, latitude) order to match WKT.
// The default city window is Bengaluru: longitude 77.5–77.7, latitude
// 12.8–13.1, with the city center at (77.5946, 12.9716).
//
// # Light status
//
// Statuses are drawn from a shuffled pool holding exactly 850 operational,
// 100 maintenance_required, and 50 faulty labels. Light n takes pool entry
// (n-1) mod 1000, so any multiple of 1000 lights reproduces 85/10/5 exactly
// regardless of how lights are spread across neighborhoods.
//
// # Failure risk
//
// Each light gets one weather row per season. The score is
//
//	clamp(base + min(AgeCap, ageDays/AgeHorizonDays) + statusBump, 0, Ceiling)
//
// rounded to two decimals, where base is uniform over the season's range:
//
//	monsoon  0.70–0.90   25–30 °C   150–250 mm
//	summer   0.50–0.70   32–38 °C    15–40 mm
//	winter   0.20–0.40   18–25 °C     5–20 mm
//
// statusBump is +0.10 for maintenance_required and 0 otherwise. A predicted
// failure date is emitted only for lights that are not already faulty and
// whose score exceeds the prediction threshold; the horizon is
// floor(uniform(7, 180) * (1 - score)) days, so riskier lights fail sooner.
// Seasons are independent scenarios, not a timeline.
package domain
