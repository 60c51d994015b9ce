// Package config loads the assistant configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stewardhq/steward/pkg/safety"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "30s" or "1h15m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the full runtime configuration.
type Config struct {
	Inference   InferenceConfig   `yaml:"inference"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Safety      SafetyConfig      `yaml:"safety"`
	Redis       RedisConfig       `yaml:"redis"`
	Persistence PersistenceConfig `yaml:"persistence"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
}

// InferenceConfig selects and tunes the language-model backend.
type InferenceConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	GrammarPath string  `yaml:"grammar_path"`
}

// PipelineConfig tunes the orchestration graph and router.
type PipelineConfig struct {
	MaxIterations int      `yaml:"max_iterations"`
	CallTimeout   Duration `yaml:"call_timeout"`
}

// SafetyConfig overrides the built-in firewall keyword sets. Empty lists keep
// the defaults.
type SafetyConfig struct {
	Keywords safety.KeywordSets `yaml:"keywords"`
}

// RedisConfig enables Redis-backed session persistence when Addr is set.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// PersistenceConfig hardens what reaches the session store.
type PersistenceConfig struct {
	// RedactPatterns are regular expressions masked in persisted text.
	RedactPatterns []string `yaml:"redact_patterns"`
	// EncryptionKey is a base64-encoded 32-byte key enabling AES-256-GCM
	// encryption at rest. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys are previous base64-encoded keys tried on decryption, for
	// key rotation.
	FallbackKeys []string `yaml:"fallback_keys"`
}

// HTTPConfig configures the HTTP API surface.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Inference: InferenceConfig{
			Endpoint:    "http://localhost:11434",
			Model:       "qwen2.5:3b",
			Temperature: 0.1,
		},
		Pipeline: PipelineConfig{
			MaxIterations: 20,
			CallTimeout:   Duration(30 * time.Second),
		},
		Safety: SafetyConfig{
			Keywords: safety.DefaultKeywordSets(),
		},
		HTTP: HTTPConfig{
			Listen: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. Environment variables
// in the file are expanded before parsing.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Pipeline.MaxIterations <= 0 {
		return fmt.Errorf("pipeline.max_iterations must be positive, got %d", c.Pipeline.MaxIterations)
	}
	if c.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("pipeline.call_timeout must be positive, got %s", c.Pipeline.CallTimeout)
	}
	if err := c.Safety.Keywords.Validate(); err != nil {
		return fmt.Errorf("invalid safety keywords: %w", err)
	}
	return nil
}
