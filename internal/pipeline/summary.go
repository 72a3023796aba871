package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
)

// Summary tallies the distributions of a run for the closing log line.
type Summary struct {
	Rows              map[string]int
	Statuses          map[domain.Status]int
	Specializations   map[string]int
	Classifications   map[string]int
	GridZones         map[string]int
	Predicted         int
	CentroidFallbacks int
}

// Summarize counts the tables present in ds.
func Summarize(ds domain.Dataset, fallbacks int) Summary {
	s := Summary{
		Rows:              map[string]int{},
		Statuses:          map[domain.Status]int{},
		Specializations:   map[string]int{},
		Classifications:   map[string]int{},
		GridZones:         map[string]int{},
		CentroidFallbacks: fallbacks,
	}
	for _, t := range ds.Tables() {
		s.Rows[t.Name] = len(t.Rows)
	}
	for _, l := range ds.Lights {
		s.Statuses[l.Status]++
	}
	for _, sup := range ds.Suppliers {
		s.Specializations[sup.Specialization]++
	}
	for _, d := range ds.Demographics {
		s.Classifications[d.UrbanClassification]++
	}
	for _, g := range ds.PowerGrid {
		s.GridZones[g.GridZone]++
	}
	for _, w := range ds.Weather {
		if w.PredictedFailureDate != nil {
			s.Predicted++
		}
	}
	return s
}

// PredictedShare is the fraction of weather rows with a predicted failure.
func (s Summary) PredictedShare() float64 {
	n := s.Rows[domain.TableWeather]
	if n == 0 {
		return 0
	}
	return float64(s.Predicted) / float64(n)
}

// Log writes one line per non-empty tally.
func (s Summary) Log(logger *slog.Logger) {
	logger.Info("rows generated", "tables", s.Rows)
	if len(s.Statuses) > 0 {
		logger.Info("street light status distribution", "statuses", s.Statuses, "centroid_fallbacks", s.CentroidFallbacks)
	}
	if len(s.Specializations) > 0 {
		logger.Info("supplier specializations", "specializations", s.Specializations)
	}
	if s.Rows[domain.TableWeather] > 0 {
		logger.Info("failure predictions", "predicted", s.Predicted, "share", s.PredictedShare())
	}
	if len(s.Classifications) > 0 {
		logger.Info("urban classification", "classes", s.Classifications)
	}
	if len(s.GridZones) > 0 {
		logger.Info("grid zones", "zones", s.GridZones)
	}
}
