package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"talkdoc/internal/artifact"
	"talkdoc/internal/score"
	"talkdoc/internal/validate"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Directory  Directory                  `yaml:"directory"`
	Transcript Transcript                 `yaml:"transcript"`
	Identity   Identity                   `yaml:"identity"`
	Generation Generation                 `yaml:"generation"`
	Discovery  Discovery                  `yaml:"discovery"`
	Presenter  Presenter                  `yaml:"presenter"`
	Schemas    map[string]validate.Schema `yaml:"schemas"`
	Scoring    score.Rubric               `yaml:"scoring"`
	Pipeline   Pipeline                   `yaml:"pipeline"`
	Output     Output                     `yaml:"output"`
	Server     Server                     `yaml:"server"`
	Logging    Logging                    `yaml:"logging"`
}

// Directory configures the entity membership directory and its local cache.
type Directory struct {
	URL           string `yaml:"url"`
	LocalPath     string `yaml:"local_path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
	// EndUserOnly keeps only end-user members, dropping vendors and
	// service providers from the candidate list.
	EndUserOnly bool `yaml:"end_user_only"`
}

// Transcript configures the transcript-fetch collaborator and the quality
// gate applied to what it returns.
type Transcript struct {
	ServiceURL string                        `yaml:"service_url"`
	Thresholds validate.TranscriptThresholds `yaml:"thresholds"`
}

type Identity struct {
	Floor     float64 `yaml:"floor"`
	WarnBelow float64 `yaml:"warn_below"`
}

type Generation struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
}

type Discovery struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Presenter struct {
	MatchFloor float64 `yaml:"match_floor"`
}

type Pipeline struct {
	Strict bool `yaml:"strict"`
	// DocType selects the document the pipeline produces: "case_study" or
	// "reference_architecture". Each has its own schema and section order.
	DocType string `yaml:"doc_type"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for talkdoc.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "talkdoc")
}

// DataDir returns the XDG data directory for talkdoc.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "talkdoc")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/talkdoc/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'talkdoc init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Directory: Directory{
			CacheTTLHours: 24,
		},
		Identity: Identity{
			Floor:     0.70,
			WarnBelow: 0.85,
		},
		Transcript: Transcript{
			Thresholds: validate.DefaultTranscriptThresholds(),
		},
		Generation: Generation{
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   4096,
		},
		Presenter: Presenter{MatchFloor: 0.85},
		Pipeline:  Pipeline{DocType: artifact.DocTypeCaseStudy},
		Scoring:   score.DefaultRubric(),
		Server:    Server{Port: 8000},
		Logging:   Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// Schema returns the named document schema.
func (c *Config) Schema(name string) (validate.Schema, error) {
	schema, ok := c.Schemas[name]
	if !ok {
		return validate.Schema{}, fmt.Errorf("unknown document schema %q", name)
	}
	return schema, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
