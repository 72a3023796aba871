package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/paulmach/orb"
)

// Output sinks.
const (
	SinkCSV   = "csv"
	SinkKafka = "kafka"
	SinkXLSX  = "xlsx"
)

// Config holds all generator settings, populated from environment variables.
type Config struct {
	OutputDir          string
	Sink               string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	BatchSize          int
	BatchFlushInterval time.Duration
	HTTPAddr           string
	Schedule           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	MetricsTextfile    string

	// Seed fixes the generator RNG when HasSeed is set.
	Seed    int64
	HasSeed bool

	Params domain.Params
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OutputDir:          sharedcfg.EnvOrDefault("OUTPUT_DIR", "data"),
		Sink:               strings.ToLower(sharedcfg.EnvOrDefault("SINK", SinkCSV)),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopicPrefix:   sharedcfg.EnvOrDefault("KAFKA_TOPIC_PREFIX", "streetlights"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		Schedule:           os.Getenv("SCHEDULE"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		MetricsTextfile:    os.Getenv("METRICS_TEXTFILE"),
	}

	if s := os.Getenv("RANDOM_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RANDOM_SEED %q", s)
		}
		cfg.Seed, cfg.HasSeed = seed, true
	}

	params, err := loadParams()
	if err != nil {
		return nil, err
	}
	cfg.Params = params

	switch cfg.Sink {
	case SinkCSV, SinkXLSX:
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaTopicPrefix == "" {
			return nil, errors.New("KAFKA_TOPIC_PREFIX is required")
		}
	default:
		return nil, fmt.Errorf("invalid SINK %q: want csv, kafka or xlsx", cfg.Sink)
	}

	return cfg, nil
}

func loadParams() (domain.Params, error) {
	p := domain.DefaultParams()
	var err error

	if path := os.Getenv("PARAMS_FILE"); path != "" {
		if err := loadParamsFile(path, &p); err != nil {
			return p, err
		}
	}

	if p.NeighborhoodCount, err = envInt("NEIGHBORHOOD_COUNT", p.NeighborhoodCount); err != nil {
		return p, err
	}
	if p.LightCount, err = envInt("LIGHT_COUNT", p.LightCount); err != nil {
		return p, err
	}
	if p.SupplierCount, err = envInt("SUPPLIER_COUNT", p.SupplierCount); err != nil {
		return p, err
	}
	if p.ClusterSigma, err = envFloat("SUPPLIER_CLUSTER_SIGMA", p.ClusterSigma); err != nil {
		return p, err
	}
	if s := os.Getenv("CITY_BOUNDS"); s != "" {
		v, err := parseFloats(s, 4)
		if err != nil {
			return p, fmt.Errorf("invalid CITY_BOUNDS: %w", err)
		}
		p.Bounds = orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}
	}
	if s := os.Getenv("CITY_CENTER"); s != "" {
		v, err := parseFloats(s, 2)
		if err != nil {
			return p, fmt.Errorf("invalid CITY_CENTER: %w", err)
		}
		p.Center = orb.Point{v[0], v[1]}
	}

	risk := &p.Risk
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"RISK_AGE_CAP", &risk.AgeCap},
		{"RISK_AGE_HORIZON_DAYS", &risk.AgeHorizonDays},
		{"RISK_MAINTENANCE_BUMP", &risk.MaintenanceBump},
		{"RISK_PREDICTION_THRESHOLD", &risk.PredictionThreshold},
		{"RISK_HORIZON_MIN_DAYS", &risk.HorizonMinDays},
		{"RISK_HORIZON_MAX_DAYS", &risk.HorizonMaxDays},
	} {
		if *f.dst, err = envFloat(f.key, *f.dst); err != nil {
			return p, err
		}
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid generation parameters: %w", err)
	}
	return p, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

// parseFloats splits a comma-separated list of exactly n numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		out[i] = v
	}
	return out, nil
}
