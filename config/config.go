// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the addrlookup settings from defaults, a YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ADDRLOOKUP"

// Config holds every setting.
type Config struct {
	GoogleMapsAPIKey string `mapstructure:"google_maps_api_key" yaml:"google_maps_api_key"`
	GoogleProjectID  string `mapstructure:"google_project_id" yaml:"google_project_id"`
	OpenAIAPIKey     string `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	OpenAIModel      string `mapstructure:"openai_model" yaml:"openai_model"`

	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`

	EnableCache   bool    `mapstructure:"enable_cache" yaml:"enable_cache"`
	CacheType     string  `mapstructure:"cache_type" yaml:"cache_type"`
	CacheDBPath   string  `mapstructure:"cache_db_path" yaml:"cache_db_path"`
	CacheDir      string  `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTTLHours float64 `mapstructure:"cache_ttl_hours" yaml:"cache_ttl_hours"`
	MaxCacheSize  int     `mapstructure:"max_cache_size" yaml:"max_cache_size"`

	MaxAPICallsPerDay int     `mapstructure:"max_api_calls_per_day" yaml:"max_api_calls_per_day"`
	WarningThreshold  int     `mapstructure:"warning_threshold" yaml:"warning_threshold"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	GeocodeTimeout    string  `mapstructure:"geocode_timeout" yaml:"geocode_timeout"`

	RegistryType       string `mapstructure:"registry_type" yaml:"registry_type"`
	RegistryPath       string `mapstructure:"registry_path" yaml:"registry_path"`
	WorksheetName      string `mapstructure:"worksheet_name" yaml:"worksheet_name"`
	GoldenMappingsFile string `mapstructure:"golden_mappings_file" yaml:"golden_mappings_file"`

	BatchWorkers int    `mapstructure:"batch_workers" yaml:"batch_workers"`
	HTTPTrace    bool   `mapstructure:"http_trace" yaml:"http_trace"`
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OpenAIModel:         "gpt-4o-mini",
		ConfidenceThreshold: 0.80,
		FuzzyThreshold:      85,
		EnableCache:         true,
		CacheType:           cache.TypeSQLite,
		CacheDBPath:         ".cache.db",
		CacheDir:            ".cache",
		CacheTTLHours:       24,
		MaxCacheSize:        10000,
		MaxAPICallsPerDay:   1000,
		WarningThreshold:    800,
		RequestsPerSecond:   10,
		GeocodeTimeout:      "10s",
		RegistryType:        registry.TypeDuckDB,
		RegistryPath:        "registry.duckdb",
		WorksheetName:       registry.DefaultWorksheet,
		GoldenMappingsFile:  "data/golden_mappings.json",
		BatchWorkers:        4,
		ListenAddr:          "localhost:8080",
	}
}

// SetDefaults registers the defaults in v, which also makes every key
// visible to environment overrides.
func SetDefaults(v *viper.Viper) {
	var m map[string]any

	data, _ := yaml.Marshal(Defaults())
	_ = yaml.Unmarshal(data, &m)

	for k, val := range m {
		v.SetDefault(k, val)
	}
}

// DefaultPath is $HOME/.addrlookup/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, ".addrlookup", "config.yaml"), nil
}

// Load reads the configuration into v. An empty file looks for the default
// file and tolerates its absence; an explicit file must exist.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".addrlookup"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("google_maps_api_key", EnvPrefix+"_GOOGLE_MAPS_API_KEY", "GOOGLE_MAPS_API_KEY")
	_ = v.BindEnv("openai_api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	return c, nil
}

// Timeout is the parsed geocode_timeout; invalid values yield 10s.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.GeocodeTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}

	return d
}

// CacheTTL is cache_ttl_hours as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours * float64(time.Hour))
}

// CacheLocation is the path of the durable cache for the configured type.
func (c Config) CacheLocation() string {
	if c.CacheType == cache.TypeDisk {
		return c.CacheDir
	}

	return c.CacheDBPath
}

// Validate lists the configuration problems. Nothing found means the
// configuration is usable as is.
func (c Config) Validate() []string {
	var problems []string

	if c.GoogleMapsAPIKey == "" {
		problems = append(problems, "Google Maps API key not set (google_maps_api_key or GOOGLE_MAPS_API_KEY)")
	}

	if c.GoldenMappingsFile != "" {
		if _, err := os.Stat(c.GoldenMappingsFile); err != nil {
			problems = append(problems, fmt.Sprintf("golden mappings file unreadable: %v", err))
		}
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		problems = append(problems, fmt.Sprintf("confidence_threshold must be within [0, 1]: %v", c.ConfidenceThreshold))
	}

	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		problems = append(problems, fmt.Sprintf("fuzzy_threshold must be within [0, 100]: %v", c.FuzzyThreshold))
	}

	if !slices.Contains([]string{cache.TypeSQLite, cache.TypeDisk, cache.TypeMemory}, c.CacheType) {
		problems = append(problems, "unknown cache_type: "+c.CacheType)
	}

	if !slices.Contains([]string{registry.TypeDuckDB, registry.TypeXLSX}, c.RegistryType) {
		problems = append(problems, "unknown registry_type: "+c.RegistryType)
	}

	if c.WarningThreshold > c.MaxAPICallsPerDay {
		problems = append(problems, fmt.Sprintf("warning_threshold (%d) is above max_api_calls_per_day (%d)",
			c.WarningThreshold, c.MaxAPICallsPerDay))
	}

	if d, err := time.ParseDuration(c.GeocodeTimeout); err != nil || d <= 0 {
		problems = append(problems, "invalid geocode_timeout: "+c.GeocodeTimeout)
	}

	if c.BatchWorkers < 1 {
		problems = append(problems, fmt.Sprintf("batch_workers must be at least 1: %d", c.BatchWorkers))
	}

	return problems
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.GoogleMapsAPIKey = mask(c.GoogleMapsAPIKey)
	c.OpenAIAPIKey = mask(c.OpenAIAPIKey)

	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= 8 {
		return "****"
	}

	return secret[:4] + "…" + secret[len(secret)-4:]
}

// WriteDefault writes the default configuration to path, creating its
// directory. An existing file is left alone.
func WriteDefault(path string) (err error) {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	header := "# addrlookup configuration\n" +
		"#\n" +
		"# Precedence (highest first): CLI flags, " + EnvPrefix + "_* environment variables, this file, defaults.\n" +
		"# API keys are better kept in GOOGLE_MAPS_API_KEY and OPENAI_API_KEY.\n\n"

	return os.WriteFile(path, append([]byte(header), data...), 0o600)
}
