package pipeline

import "fmt"

// Stage selects which tables a run generates.
type Stage string

const (
	// StageAll generates every table in memory.
	StageAll Stage = "all"
	// StageNeighborhoods generates neighborhoods only.
	StageNeighborhoods Stage = "neighborhoods"
	// StageLights loads neighborhoods and generates street lights.
	StageLights Stage = "lights"
	// StageSuppliers generates suppliers only.
	StageSuppliers Stage = "suppliers"
	// StageEnrichment loads neighborhoods and lights and generates the
	// three enrichment tables.
	StageEnrichment Stage = "enrichment"
)

// Stages lists the valid stages.
var Stages = []Stage{StageAll, StageNeighborhoods, StageLights, StageSuppliers, StageEnrichment}

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q: want one of %v", s, Stages)
}

func (s Stage) needsNeighborhoods() bool {
	return s == StageLights || s == StageEnrichment
}

func (s Stage) needsLights() bool {
	return s == StageEnrichment
}
