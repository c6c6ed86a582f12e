// Package config loads the application configuration from a YAML file and
// the environment. Environment variables use the CARCATALOG_ prefix with
// underscores for nesting, e.g. CARCATALOG_DATABASE_PASSWORD.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nordbil/carcatalog/internal/database"
	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/frontier"
	"github.com/nordbil/carcatalog/internal/imagestore"
	"github.com/nordbil/carcatalog/internal/job"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/scrape"
)

// Default configuration values.
const (
	defaultBatchSize      = 100
	defaultConcurrency    = 4
	defaultStaleThreshold = 7 * 24 * time.Hour
	defaultIngestionCron  = "0 4 * * *"
	defaultBatchCron      = "0 * * * *"
	// Maintenance runs after the daily ingestion cycle has had time to finish.
	defaultMaintainCron = "30 6 * * *"
	envPrefix           = "CARCATALOG"
)

// Parser kinds accepted in source configuration.
const (
	ParserQueryParam   = "query_param"
	ParserNumericToken = "numeric_token"
	ParserPathPattern  = "path_pattern"
)

// ParserConfig selects the reference parser for one source.
type ParserConfig struct {
	Kind string `mapstructure:"kind" yaml:"kind"`
	// Param names the query parameter for the query_param kind.
	Param string `mapstructure:"param" yaml:"param"`
	// Pattern is the path regexp for the path_pattern kind. It must contain
	// one capture group for the reference.
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
}

// Build returns the configured reference parser.
func (p ParserConfig) Build() (frontier.ReferenceParser, error) {
	switch p.Kind {
	case ParserQueryParam:
		if p.Param == "" {
			return nil, errors.New("query_param parser requires a param")
		}
		return frontier.QueryParamParser{Param: p.Param}, nil
	case ParserNumericToken:
		return frontier.NumericTokenParser{}, nil
	case ParserPathPattern:
		return frontier.NewPathPatternParser(p.Pattern)
	default:
		return nil, fmt.Errorf("unknown parser kind: %s", p.Kind)
	}
}

// SourceConfig describes one listing source end to end: its identity, how to
// walk its site, how to read its pages, and how to parse its references.
type SourceConfig struct {
	ID        string               `mapstructure:"id"        yaml:"id"`
	Name      string               `mapstructure:"name"      yaml:"name"`
	Kind      string               `mapstructure:"kind"      yaml:"kind"`
	Parser    ParserConfig         `mapstructure:"parser"    yaml:"parser"`
	Site      scrape.SiteConfig    `mapstructure:"site"      yaml:"site"`
	Selectors scrape.PageSelectors `mapstructure:"selectors" yaml:"selectors"`
}

// Domain returns the source's domain representation.
func (s SourceConfig) Domain() domain.Source {
	return domain.Source{
		ID:   s.ID,
		Name: s.Name,
		Kind: domain.SourceKind(s.Kind),
	}
}

// IngestionConfig tunes the frontier batch pipeline.
type IngestionConfig struct {
	// BatchSize caps how many frontier entries one cycle resolves per source.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
	// Concurrency caps in-flight entry resolutions within one batch.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// StaleThreshold is how long a listing may go unseen before the sweep
	// deactivates it.
	StaleThreshold time.Duration `mapstructure:"stale_threshold" yaml:"stale_threshold"`
}

// Config is the root application configuration.
type Config struct {
	Database   database.Config   `mapstructure:"database"    yaml:"database"`
	ImageStore imagestore.Config `mapstructure:"image_store" yaml:"image_store"`
	Logging    logger.Config     `mapstructure:"logging"     yaml:"logging"`
	Ingestion  IngestionConfig   `mapstructure:"ingestion"   yaml:"ingestion"`
	Schedules  job.Schedules     `mapstructure:"schedules"   yaml:"schedules"`
	Sources    []SourceConfig    `mapstructure:"sources"     yaml:"sources"`
	// MetricsAddr serves Prometheus metrics when the scheduler daemon runs.
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// Validate checks cross-field constraints the loader cannot express.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("at least one source must be configured")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	aggregators := 0
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.ID == "" {
			return fmt.Errorf("source %d: id is required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate source id: %s", s.ID)
		}
		seen[s.ID] = struct{}{}

		switch domain.SourceKind(s.Kind) {
		case domain.SourceKindAuthoritative:
		case domain.SourceKindAggregator:
			aggregators++
		default:
			return fmt.Errorf("source %s: unknown kind %q", s.ID, s.Kind)
		}

		if _, err := s.Parser.Build(); err != nil {
			return fmt.Errorf("source %s: %w", s.ID, err)
		}
		if err := s.Site.Validate(); err != nil {
			return fmt.Errorf("source %s: %w", s.ID, err)
		}
	}

	if aggregators > 1 {
		return fmt.Errorf("at most one aggregator source is supported, got %d", aggregators)
	}

	if c.Ingestion.BatchSize <= 0 {
		return errors.New("ingestion batch_size must be positive")
	}
	if c.Ingestion.Concurrency <= 0 {
		return errors.New("ingestion concurrency must be positive")
	}
	if c.Ingestion.StaleThreshold <= 0 {
		return errors.New("ingestion stale_threshold must be positive")
	}

	return nil
}

// Load reads the configuration from the given file, or from the default
// search path when the path is empty, layered under environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/carcatalog")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file on the search path: defaults plus environment.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "carcatalog")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")

	v.SetDefault("ingestion.batch_size", defaultBatchSize)
	v.SetDefault("ingestion.concurrency", defaultConcurrency)
	v.SetDefault("ingestion.stale_threshold", defaultStaleThreshold)

	v.SetDefault("schedules.ingestion", defaultIngestionCron)
	v.SetDefault("schedules.frontier_batch", defaultBatchCron)
	v.SetDefault("schedules.maintenance", defaultMaintainCron)

	v.SetDefault("metrics_addr", ":9090")
}
