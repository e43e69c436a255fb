// Package config provides configuration management for agentcache binaries.
// It loads settings from environment variables with the AGENTCACHE_ prefix
// and provides sensible defaults for all configuration options. A YAML file
// can override the environment-derived values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentcache/agentcache-go/pkg/reasoning"
)

// Config holds all configuration settings for an agentcache process.
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Critic CriticConfig `yaml:"critic"`
}

// CacheConfig contains the reasoning-cache tuning knobs.
type CacheConfig struct {
	WorkingMemoryCapacity int     `yaml:"working_memory_capacity"`  // Working-memory slot budget (default: 7)
	CacheThreshold        float64 `yaml:"cache_threshold"`          // Minimum confidence for admission (default: 0.6)
	SimilarityThreshold   float64 `yaml:"similarity_threshold"`     // Minimum similarity for non-exact hits (default: 0.7)
	MinPatternSuccessRate float64 `yaml:"min_pattern_success_rate"` // Success-rate floor for extraction (default: 0.75)
	DecayRate             float64 `yaml:"decay_rate"`               // Accepted but unused decay knob (default: 0.95)
	ComparePrompts        bool    `yaml:"compare_prompts"`          // Compare prompt text instead of canonical JSON (default: false)
}

// CriticConfig contains protection settings for the verification hook.
type CriticConfig struct {
	MaxFailures          int           `yaml:"max_failures"`            // Consecutive failures to trip the breaker (default: 3)
	Timeout              time.Duration `yaml:"timeout"`                 // Breaker open duration (default: 30s)
	HalfOpenMaxSuccesses int           `yaml:"half_open_max_successes"` // Successes to close a half-open breaker (default: 2)
	RatePerSec           float64       `yaml:"rate_per_sec"`            // Verifier invocations per second (default: 10)
	Burst                int           `yaml:"burst"`                   // Verifier burst budget (default: 5)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the AGENTCACHE_ prefix.
func LoadConfig() (*Config, error) {
	cfg := buildBaseConfig()
	return cfg, nil
}

// LoadConfigFromFile loads configuration from environment variables and
// then applies overrides from the YAML file at path. File values take
// precedence over environment variables.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := buildBaseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// ToOptions maps the cache section onto reasoning.Options, keeping the
// default Jaccard scorer.
func (c *Config) ToOptions() reasoning.Options {
	opts := reasoning.DefaultOptions()
	opts.WorkingMemoryCapacity = c.Cache.WorkingMemoryCapacity
	opts.CacheThreshold = c.Cache.CacheThreshold
	opts.SimilarityThreshold = c.Cache.SimilarityThreshold
	opts.MinPatternSuccessRate = c.Cache.MinPatternSuccessRate
	opts.DecayRate = c.Cache.DecayRate
	opts.ComparePrompts = c.Cache.ComparePrompts
	return opts
}

// BreakerConfig maps the critic section onto reasoning.BreakerConfig.
func (c *Config) BreakerConfig() reasoning.BreakerConfig {
	return reasoning.BreakerConfig{
		MaxFailures:          uint32(c.Critic.MaxFailures),
		Timeout:              c.Critic.Timeout,
		HalfOpenMaxSuccesses: uint32(c.Critic.HalfOpenMaxSuccesses),
	}
}

// buildBaseConfig constructs a Config with values from environment
// variables and defaults.
func buildBaseConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			WorkingMemoryCapacity: getEnvInt("AGENTCACHE_WORKING_MEMORY_CAPACITY", reasoning.DefaultWorkingMemoryCapacity),
			CacheThreshold:        getEnvFloat("AGENTCACHE_CACHE_THRESHOLD", reasoning.DefaultCacheThreshold),
			SimilarityThreshold:   getEnvFloat("AGENTCACHE_SIMILARITY_THRESHOLD", reasoning.DefaultSimilarityThreshold),
			MinPatternSuccessRate: getEnvFloat("AGENTCACHE_MIN_PATTERN_SUCCESS_RATE", reasoning.DefaultMinPatternSuccessRate),
			DecayRate:             getEnvFloat("AGENTCACHE_DECAY_RATE", reasoning.DefaultDecayRate),
			ComparePrompts:        getEnvBool("AGENTCACHE_COMPARE_PROMPTS", false),
		},
		Critic: CriticConfig{
			MaxFailures:          getEnvInt("AGENTCACHE_CRITIC_MAX_FAILURES", 3),
			Timeout:              getEnvDuration("AGENTCACHE_CRITIC_TIMEOUT", 30*time.Second),
			HalfOpenMaxSuccesses: getEnvInt("AGENTCACHE_CRITIC_HALF_OPEN_MAX_SUCCESSES", 2),
			RatePerSec:           getEnvFloat("AGENTCACHE_CRITIC_RATE_PER_SEC", 10),
			Burst:                getEnvInt("AGENTCACHE_CRITIC_BURST", 5),
		},
	}
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as a
// float, it returns the default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" as true and "false", "0", "no"
// as false (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "30s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
