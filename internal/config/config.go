package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the entmatch API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Index      IndexConfig      `yaml:"index"`
	Match      MatchConfig      `yaml:"match"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds candidate index settings.
type IndexConfig struct {
	Provider         string   `yaml:"provider"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MatchConfig holds scoring and ranking settings.
type MatchConfig struct {
	Limit              int      `yaml:"limit"`               // default results per query
	MaxLimit           int      `yaml:"max_limit"`           // cap on the per-request limit
	CandidateFactor    int      `yaml:"candidate_factor"`    // limit multiplier for index retrieval
	Threshold          float64  `yaml:"threshold"`           // minimum score counted as a match
	Cutoff             float64  `yaml:"cutoff"`              // minimum score returned at all
	Workers            int      `yaml:"workers"`             // scoring goroutines per request
	DisabledAlgorithms []string `yaml:"disabled_algorithms"` // removed from the registry
}

// NormalizerConfig selects the name normalization variant.
type NormalizerConfig struct {
	Variant string `yaml:"variant"` // basic, full (default: basic)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Provider == "" {
		c.Index.Provider = "redis"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "entmatch"
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Match.Limit <= 0 {
		c.Match.Limit = 5
	}
	if c.Match.MaxLimit <= 0 {
		c.Match.MaxLimit = 50
	}
	if c.Match.CandidateFactor <= 0 {
		c.Match.CandidateFactor = 10
	}
	if c.Match.Threshold <= 0 {
		c.Match.Threshold = 0.7
	}
	if c.Match.Cutoff <= 0 {
		c.Match.Cutoff = 0.5
	}
	if c.Match.Workers <= 0 {
		c.Match.Workers = 8
	}
	if c.Normalizer.Variant == "" {
		c.Normalizer.Variant = "basic"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Index.Provider {
	case "redis":
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for the redis provider")
		}
	case "memory":
		// no connection settings needed
	default:
		return fmt.Errorf("index.provider must be \"redis\" or \"memory\", got %q", c.Index.Provider)
	}
	switch c.Normalizer.Variant {
	case "basic", "full":
		// ok
	default:
		return fmt.Errorf("normalizer.variant must be \"basic\" or \"full\", got %q", c.Normalizer.Variant)
	}
	if c.Match.Cutoff < 0 || c.Match.Cutoff > 1 {
		return fmt.Errorf("match.cutoff must be within [0, 1], got %v", c.Match.Cutoff)
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("match.threshold must be within [0, 1], got %v", c.Match.Threshold)
	}
	if c.Match.MaxLimit < c.Match.Limit {
		return fmt.Errorf("match.max_limit (%d) must not be below match.limit (%d)", c.Match.MaxLimit, c.Match.Limit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
