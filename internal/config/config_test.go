package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nordbil/carcatalog/internal/domain"
)

const testConfigYAML = `
database:
  host: db.internal
  dbname: carcatalog

ingestion:
  batch_size: 50
  stale_threshold: 168h

sources:
  - id: bilasolur
    name: Bílasölur
    kind: aggregator
    parser:
      kind: query_param
      param: cid
    site:
      allowed_domain: bilasolur.is
      start_url: https://bilasolur.is/SearchResults.aspx
      link_selector: a.car-link
      next_page_selector: a.next-page
  - id: hekla
    name: Hekla
    kind: authoritative
    parser:
      kind: numeric_token
    site:
      allowed_domain: hekla.is
      start_url: https://hekla.is/notadir-bilar
      link_selector: a.vehicle-card
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q", cfg.Database.Host)
	}
	// Defaults fill what the file omits.
	if cfg.Database.Port != "5432" {
		t.Errorf("Database.Port = %q, want default 5432", cfg.Database.Port)
	}
	if cfg.Ingestion.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.Ingestion.BatchSize)
	}
	if cfg.Ingestion.StaleThreshold != 168*time.Hour {
		t.Errorf("StaleThreshold = %v, want 168h", cfg.Ingestion.StaleThreshold)
	}
	if cfg.Ingestion.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want default 4", cfg.Ingestion.Concurrency)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(cfg.Sources))
	}

	agg := cfg.Sources[0]
	if agg.Domain().Kind != domain.SourceKindAggregator {
		t.Errorf("source kind = %q", agg.Kind)
	}
	if _, err = agg.Parser.Build(); err != nil {
		t.Errorf("Parser.Build() error = %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CARCATALOG_DATABASE_PASSWORD", "s3cret")

	cfg, err := Load(writeConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("Database.Password = %q, want env value", cfg.Database.Password)
	}
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, testConfigYAML))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no sources", func(c *Config) { c.Sources = nil }},
		{"duplicate id", func(c *Config) { c.Sources[1].ID = c.Sources[0].ID }},
		{"unknown kind", func(c *Config) { c.Sources[0].Kind = "mirror" }},
		{"second aggregator", func(c *Config) { c.Sources[1].Kind = "aggregator" }},
		{"missing param", func(c *Config) { c.Sources[0].Parser.Param = "" }},
		{"bad batch size", func(c *Config) { c.Ingestion.BatchSize = 0 }},
		{"bad concurrency", func(c *Config) { c.Ingestion.Concurrency = -1 }},
		{"bad threshold", func(c *Config) { c.Ingestion.StaleThreshold = 0 }},
		{"no start url", func(c *Config) { c.Sources[1].Site.StartURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestParserConfig_Build(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ParserConfig
		wantErr bool
	}{
		{"query param", ParserConfig{Kind: ParserQueryParam, Param: "cid"}, false},
		{"numeric token", ParserConfig{Kind: ParserNumericToken}, false},
		{"path pattern", ParserConfig{Kind: ParserPathPattern, Pattern: `/item/(\d+)`}, false},
		{"query param without param", ParserConfig{Kind: ParserQueryParam}, true},
		{"pattern without group", ParserConfig{Kind: ParserPathPattern, Pattern: `/item/\d+`}, true},
		{"unknown kind", ParserConfig{Kind: "magic"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if (err != nil) != tt.wantErr {
				t.Errorf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
