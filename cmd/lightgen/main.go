// Command lightgen generates the street-light seed dataset.
//
//	lightgen generate --stage all
//	lightgen generate --stage neighborhoods && lightgen generate --stage lights && \
//	  lightgen generate --stage suppliers && lightgen generate --stage enrichment
//	lightgen serve --stage all
//
// Staged runs read earlier tables back from the CSV files in OUTPUT_DIR.
// serve exposes /healthz, /readyz, /metrics and POST /runs on HTTP_ADDR,
// runs the stage once at startup, and again on every SCHEDULE tick.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/streetlight-datagen/internal/adapter/csvfile"
	"github.com/couchcryptid/streetlight-datagen/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/streetlight-datagen/internal/adapter/kafka"
	"github.com/couchcryptid/streetlight-datagen/internal/adapter/xlsx"
	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/couchcryptid/streetlight-datagen/internal/observability"
	"github.com/couchcryptid/streetlight-datagen/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lightgen",
		Short:         "Synthetic street-light dataset generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("lightgen failed", "error", err)
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation stage and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(stage)
			if err != nil {
				return err
			}
			defer a.close()
			return a.generate(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&stage, "stage", "s", string(pipeline.StageAll), "stage to run: all, neighborhoods, lights, suppliers, enrichment")
	return cmd
}

func serveCmd() *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and on-demand runs, regenerating on SCHEDULE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(stage)
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&stage, "stage", "s", string(pipeline.StageAll), "stage to run on startup, on schedule and on POST /runs")
	return cmd
}

// app holds the wiring shared by both subcommands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipeline  *pipeline.Pipeline
	stage     pipeline.Stage
	newRNG    func() *rand.Rand
	closeSink func() error
}

func newApp(stageName string) (*app, error) {
	stage, err := pipeline.ParseStage(stageName)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sink, closeSink := newSink(cfg, logger)
	source := csvfile.New(cfg.OutputDir, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline.New(cfg.Params, source, sink, clockwork.NewRealClock(), logger, metrics),
		stage:     stage,
		newRNG:    rngFactory(cfg, logger),
		closeSink: closeSink,
	}, nil
}

func (a *app) close() {
	if err := a.closeSink(); err != nil {
		a.logger.Error("sink close error", "error", err)
	}
}

// generate runs the stage once. METRICS_TEXTFILE receives the run's metrics
// since nothing scrapes a one-shot process.
func (a *app) generate(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := a.pipeline.Run(ctx, a.stage, a.newRNG())
	if a.cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
			a.logger.Error("metrics textfile write error", "error", err, "path", a.cfg.MetricsTextfile)
		}
	}
	return runErr
}

// newSink picks the sink named by SINK.
func newSink(cfg *config.Config, logger *slog.Logger) (pipeline.Sink, func() error) {
	switch cfg.Sink {
	case config.SinkKafka:
		w := kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka sink", "brokers", cfg.KafkaBrokers, "topic_prefix", cfg.KafkaTopicPrefix)
		return w, w.Close
	case config.SinkXLSX:
		w := xlsx.New(cfg.OutputDir, logger)
		logger.Info("xlsx sink", "path", w.Path())
		return w, func() error { return nil }
	default:
		logger.Info("csv sink", "dir", cfg.OutputDir)
		return csvfile.New(cfg.OutputDir, logger), func() error { return nil }
	}
}

// rngFactory returns a constructor for per-run generators. A configured seed
// makes every run reproduce the same layout.
func rngFactory(cfg *config.Config, logger *slog.Logger) func() *rand.Rand {
	if cfg.HasSeed {
		logger.Info("using fixed random seed", "seed", cfg.Seed)
		return func() *rand.Rand { return rand.New(rand.NewSource(cfg.Seed)) }
	}
	return func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
}

// trigger adapts the pipeline to httpadapter.Runner.
type trigger struct {
	p      *pipeline.Pipeline
	stage  pipeline.Stage
	newRNG func() *rand.Rand
}

func (t trigger) Trigger(ctx context.Context) (domain.RunInfo, map[string]int, error) {
	res, err := t.p.Run(ctx, t.stage, t.newRNG())
	if err != nil {
		return domain.RunInfo{}, nil, err
	}
	return res.Run, res.Summary.Rows, nil
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, p, logger := a.cfg, a.pipeline, a.logger
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, trigger{p: p, stage: a.stage, newRNG: a.newRNG}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var sched *pipeline.Scheduler
	if cfg.Schedule != "" {
		var err error
		sched, err = pipeline.NewScheduler(ctx, cfg.Schedule, p, a.stage, a.newRNG, logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	// Initial run.
	go func() {
		if _, err := p.Run(ctx, a.stage, a.newRNG()); err != nil && ctx.Err() == nil {
			logger.Error("initial run failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
