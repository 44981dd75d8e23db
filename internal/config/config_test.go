package config

import (
	"os"
	"path/filepath"
	"testing"

	"talkdoc/internal/artifact"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Identity.Floor != 0.70 {
		t.Errorf("expected identity floor 0.70, got %v", cfg.Identity.Floor)
	}
	if cfg.Directory.URL == "" {
		t.Error("expected directory URL to be populated")
	}
	if cfg.Transcript.Thresholds.MinChars != 1000 {
		t.Errorf("expected min_chars 1000, got %d", cfg.Transcript.Thresholds.MinChars)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if !cfg.Directory.EndUserOnly {
		t.Error("expected the default directory config to filter to end-user members")
	}
	if cfg.Pipeline.DocType != artifact.DocTypeCaseStudy {
		t.Errorf("expected default doc type case_study, got %q", cfg.Pipeline.DocType)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
generation:
  provider: openai
  model: gpt-4o
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Generation.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Generation.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Generation.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Generation.OllamaURL)
	}
	if cfg.Identity.Floor != 0.70 {
		t.Errorf("expected default identity floor, got %v", cfg.Identity.Floor)
	}
	if cfg.Scoring.Threshold != 0.70 {
		t.Errorf("expected default scoring threshold, got %v", cfg.Scoring.Threshold)
	}
}

func TestDefaultSchemas(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	deep, err := cfg.Schema("deep_analysis")
	if err != nil {
		t.Fatalf("expected deep_analysis schema: %v", err)
	}
	if !deep.RequireQuotes {
		t.Error("deep_analysis must require metric quotes")
	}
	var entityRule bool
	for _, rule := range deep.Counts {
		if rule.Key == "entities" && rule.Ideal == 5 && rule.Critical == 4 {
			entityRule = true
		}
	}
	if !entityRule {
		t.Errorf("expected entities count rule ideal=5 critical=4, got %+v", deep.Counts)
	}

	study, err := cfg.Schema("case_study")
	if err != nil {
		t.Fatalf("expected case_study schema: %v", err)
	}
	if len(study.Sections) == 0 {
		t.Error("case_study schema must carry section word rules")
	}

	refArch, err := cfg.Schema("reference_architecture")
	if err != nil {
		t.Fatalf("expected reference_architecture schema: %v", err)
	}
	var archRule bool
	for _, rule := range refArch.Sections {
		if rule.Name == "architecture_overview" && rule.CriticalWords > 0 {
			archRule = true
		}
	}
	if !archRule {
		t.Errorf("expected architecture_overview section rule, got %+v", refArch.Sections)
	}

	if _, err := cfg.Schema("no_such_schema"); err == nil {
		t.Error("expected error for unknown schema name")
	}
}

func TestDefaultRubricValid(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	sum := 0.0
	for _, w := range cfg.Scoring.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default rubric weights must sum to 1.0, got %v", sum)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Schemas) == 0 {
		t.Error("expected schemas to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
