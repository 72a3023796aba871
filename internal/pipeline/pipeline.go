package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Source loads tables written by earlier stages.
type Source interface {
	LoadNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error)
	LoadStreetLights(ctx context.Context) ([]domain.StreetLight, error)
}

// Sink persists the tables of a run.
type Sink interface {
	WriteTables(ctx context.Context, run domain.RunInfo, tables []domain.Table) error
}

// Result is the outcome of a successful run.
type Result struct {
	Run     domain.RunInfo
	Dataset domain.Dataset
	Summary Summary
}

// Pipeline generates a stage's tables and hands them to the sink.
type Pipeline struct {
	params  domain.Params
	source  Source
	sink    Sink
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu    sync.Mutex // runs never overlap
	ready atomic.Bool
}

// New creates a Pipeline. source may be nil when only self-contained stages
// (all, neighborhoods, suppliers) are run.
func New(params domain.Params, source Source, sink Sink, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		params:  params,
		source:  source,
		sink:    sink,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no dataset has been generated yet")
	}
	return nil
}

// Run generates the tables of stage with rng and writes them to the sink.
// The generation date is the pipeline clock's current time.
func (p *Pipeline) Run(ctx context.Context, stage Stage, rng *rand.Rand) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock.Now()
	run := domain.RunInfo{ID: uuid.NewString(), Stage: string(stage), GeneratedAt: start}
	logger := p.logger.With("run_id", run.ID, "stage", stage)

	p.metrics.Running.Set(1)
	defer p.metrics.Running.Set(0)

	logger.Info("run started", "generated_at", start.Format(domain.DateTimeLayout))

	res, err := p.run(ctx, logger, run, stage, rng)
	p.metrics.RunDuration.WithLabelValues(string(stage)).Observe(p.clock.Since(start).Seconds())
	if err != nil {
		p.metrics.Runs.WithLabelValues(string(stage), observability.OutcomeError).Inc()
		logger.Error("run failed", "error", err)
		return Result{}, err
	}

	p.metrics.Runs.WithLabelValues(string(stage), observability.OutcomeSuccess).Inc()
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.ready.Store(true)

	res.Summary.Log(logger)
	logger.Info("run finished", "duration", p.clock.Since(start))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, run domain.RunInfo, stage Stage, rng *rand.Rand) (Result, error) {
	ds, fallbacks, err := p.generate(ctx, stage, rng, run.GeneratedAt)
	if err != nil {
		return Result{}, err
	}
	if fallbacks > 0 {
		logger.Warn("lights placed on neighborhood centroids", "count", fallbacks)
	}

	tables := ds.Tables()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := p.sink.WriteTables(ctx, run, tables); err != nil {
		return Result{}, fmt.Errorf("write tables: %w", err)
	}
	for _, t := range tables {
		p.metrics.RowsWritten.WithLabelValues(t.Name).Add(float64(len(t.Rows)))
		logger.Debug("table written", "table", t.Name, "rows", len(t.Rows))
	}

	return Result{Run: run, Dataset: ds, Summary: Summarize(ds, fallbacks)}, nil
}

// generate builds the stage's dataset. Inputs loaded from the source are used
// for derivation only and are not part of the returned dataset.
func (p *Pipeline) generate(ctx context.Context, stage Stage, rng *rand.Rand, asOf time.Time) (domain.Dataset, int, error) {
	var (
		ds        domain.Dataset
		hoods     []domain.Neighborhood
		lights    []domain.StreetLight
		fallbacks int
		err       error
	)

	if stage.needsNeighborhoods() || stage.needsLights() {
		if p.source == nil {
			return ds, 0, fmt.Errorf("stage %s needs previously generated tables but no source is configured", stage)
		}
	}

	switch {
	case stage == StageAll || stage == StageNeighborhoods:
		hoods, err = domain.GenerateNeighborhoods(rng, p.params.NeighborhoodCount, p.params.Bounds)
		if err != nil {
			return ds, 0, fmt.Errorf("generate neighborhoods: %w", err)
		}
		ds.Neighborhoods = hoods
	case stage.needsNeighborhoods():
		if hoods, err = p.source.LoadNeighborhoods(ctx); err != nil {
			return ds, 0, fmt.Errorf("load neighborhoods: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return ds, 0, err
	}

	switch {
	case stage == StageAll || stage == StageLights:
		var stats domain.LightStats
		lights, stats, err = domain.GenerateStreetLights(rng, hoods, p.params.LightCount, asOf)
		if err != nil {
			return ds, 0, fmt.Errorf("generate street lights: %w", err)
		}
		fallbacks = stats.CentroidFallbacks
		p.metrics.SamplerFallbacks.Add(float64(fallbacks))
		ds.Lights = lights
	case stage.needsLights():
		if lights, err = p.source.LoadStreetLights(ctx); err != nil {
			return ds, 0, fmt.Errorf("load street lights: %w", err)
		}
		if err := checkLightRefs(hoods, lights); err != nil {
			return ds, 0, err
		}
	}
	if err := ctx.Err(); err != nil {
		return ds, 0, err
	}

	if stage == StageAll || stage == StageSuppliers {
		ds.Suppliers, err = domain.GenerateSuppliers(rng, p.params.SupplierCount, p.params.Bounds, p.params.Center, p.params.ClusterSigma)
		if err != nil {
			return ds, 0, fmt.Errorf("generate suppliers: %w", err)
		}
	}

	if stage == StageAll || stage == StageEnrichment {
		weather, stats := domain.GenerateWeather(rng, lights, p.params.Risk, asOf)
		p.metrics.PredictedFailures.Add(float64(stats.Predicted))
		ds.Weather = weather
		ds.Demographics = domain.GenerateDemographics(hoods)
		if ds.PowerGrid, err = domain.GeneratePowerGrid(rng, lights); err != nil {
			return ds, 0, err
		}
	}

	return ds, fallbacks, nil
}

// checkLightRefs rejects loaded lights whose neighborhood is unknown.
func checkLightRefs(hoods []domain.Neighborhood, lights []domain.StreetLight) error {
	known := make(map[string]struct{}, len(hoods))
	for _, n := range hoods {
		known[n.ID] = struct{}{}
	}
	for _, l := range lights {
		if _, ok := known[l.NeighborhoodID]; !ok {
			return fmt.Errorf("%w: light %s references unknown neighborhood %s", domain.ErrMalformedRecord, l.ID, l.NeighborhoodID)
		}
	}
	return nil
}
