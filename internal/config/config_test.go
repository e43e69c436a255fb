package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcache/agentcache-go/internal/config"
	"github.com/agentcache/agentcache-go/pkg/reasoning"
)

func TestLoadConfig_Defaults(t *testing.T) {
	_ = os.Unsetenv("AGENTCACHE_WORKING_MEMORY_CAPACITY")
	_ = os.Unsetenv("AGENTCACHE_CACHE_THRESHOLD")
	_ = os.Unsetenv("AGENTCACHE_SIMILARITY_THRESHOLD")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, reasoning.DefaultWorkingMemoryCapacity, cfg.Cache.WorkingMemoryCapacity)
	assert.Equal(t, reasoning.DefaultCacheThreshold, cfg.Cache.CacheThreshold)
	assert.Equal(t, reasoning.DefaultSimilarityThreshold, cfg.Cache.SimilarityThreshold)
	assert.Equal(t, reasoning.DefaultMinPatternSuccessRate, cfg.Cache.MinPatternSuccessRate)
	assert.Equal(t, reasoning.DefaultDecayRate, cfg.Cache.DecayRate)
	assert.False(t, cfg.Cache.ComparePrompts)

	assert.Equal(t, 3, cfg.Critic.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Critic.Timeout)
	assert.Equal(t, 2, cfg.Critic.HalfOpenMaxSuccesses)
	assert.InDelta(t, 10.0, cfg.Critic.RatePerSec, 0.001)
	assert.Equal(t, 5, cfg.Critic.Burst)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AGENTCACHE_WORKING_MEMORY_CAPACITY", "12")
	t.Setenv("AGENTCACHE_CACHE_THRESHOLD", "0.4")
	t.Setenv("AGENTCACHE_COMPARE_PROMPTS", "true")
	t.Setenv("AGENTCACHE_CRITIC_TIMEOUT", "5s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Cache.WorkingMemoryCapacity)
	assert.InDelta(t, 0.4, cfg.Cache.CacheThreshold, 0.001)
	assert.True(t, cfg.Cache.ComparePrompts)
	assert.Equal(t, 5*time.Second, cfg.Critic.Timeout)
}

func TestLoadConfig_MalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("AGENTCACHE_WORKING_MEMORY_CAPACITY", "not-a-number")
	t.Setenv("AGENTCACHE_SIMILARITY_THRESHOLD", "high")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, reasoning.DefaultWorkingMemoryCapacity, cfg.Cache.WorkingMemoryCapacity)
	assert.Equal(t, reasoning.DefaultSimilarityThreshold, cfg.Cache.SimilarityThreshold)
}

func TestLoadConfigFromFile_OverridesEnv(t *testing.T) {
	t.Setenv("AGENTCACHE_WORKING_MEMORY_CAPACITY", "12")

	path := filepath.Join(t.TempDir(), "agentcache.yaml")
	yamlBody := []byte(`
cache:
  working_memory_capacity: 3
  similarity_threshold: 0.8
critic:
  max_failures: 7
`)
	require.NoError(t, os.WriteFile(path, yamlBody, 0o644))

	cfg, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Cache.WorkingMemoryCapacity, "file values take precedence over env")
	assert.InDelta(t, 0.8, cfg.Cache.SimilarityThreshold, 0.001)
	assert.Equal(t, 7, cfg.Critic.MaxFailures)

	// Keys absent from the file keep their env/default values.
	assert.Equal(t, reasoning.DefaultCacheThreshold, cfg.Cache.CacheThreshold)
	assert.Equal(t, 30*time.Second, cfg.Critic.Timeout)
}

func TestLoadConfigFromFile_MissingFile(t *testing.T) {
	_, err := config.LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [unclosed"), 0o644))

	_, err := config.LoadConfigFromFile(path)
	assert.Error(t, err)
}

func TestToOptions_Mapping(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{
			WorkingMemoryCapacity: 5,
			CacheThreshold:        0.5,
			SimilarityThreshold:   0.65,
			MinPatternSuccessRate: 0.8,
			DecayRate:             0.9,
			ComparePrompts:        true,
		},
	}

	opts := cfg.ToOptions()
	assert.Equal(t, 5, opts.WorkingMemoryCapacity)
	assert.InDelta(t, 0.5, opts.CacheThreshold, 0.001)
	assert.InDelta(t, 0.65, opts.SimilarityThreshold, 0.001)
	assert.InDelta(t, 0.8, opts.MinPatternSuccessRate, 0.001)
	assert.InDelta(t, 0.9, opts.DecayRate, 0.001)
	assert.True(t, opts.ComparePrompts)
	assert.NotNil(t, opts.Scorer, "the default scorer is preserved")
	assert.NoError(t, opts.Validate())
}

func TestBreakerConfig_Mapping(t *testing.T) {
	cfg := &config.Config{
		Critic: config.CriticConfig{
			MaxFailures:          4,
			Timeout:              10 * time.Second,
			HalfOpenMaxSuccesses: 1,
		},
	}

	bc := cfg.BreakerConfig()
	assert.Equal(t, uint32(4), bc.MaxFailures)
	assert.Equal(t, 10*time.Second, bc.Timeout)
	assert.Equal(t, uint32(1), bc.HalfOpenMaxSuccesses)
}
