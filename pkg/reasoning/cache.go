// Package reasoning provides a tiered, content-addressable cache for
// reasoning traces. An expensive reasoning process caches the sequence of
// intermediate steps it produced for a context; identical contexts are
// served by exact fingerprint lookup and sufficiently similar contexts by a
// token-overlap scan, optionally confirmed by a caller-supplied critic
// before reuse.
//
// The cache keeps two in-process tiers: a small, capacity-bounded working
// memory guarded by a value-based admission gate, and an unbounded episodic
// memory that absorbs evictions and non-admitted writes. States move
// between tiers, they are never duplicated or deleted. There is no
// persistence: the cache lives and dies with the process.
package reasoning

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentcache/agentcache-go/pkg/types"
)

// Default configuration values.
const (
	// DefaultWorkingMemoryCapacity mirrors the classical short-term-memory
	// span heuristic; it is not a performance tuning.
	DefaultWorkingMemoryCapacity = 7

	// DefaultCacheThreshold is the minimum confidence for working-memory
	// admission.
	DefaultCacheThreshold = 0.6

	// DefaultSimilarityThreshold is the minimum similarity score for a
	// non-exact match.
	DefaultSimilarityThreshold = 0.7

	// DefaultMinPatternSuccessRate is the minimum success rate for an
	// episode to contribute to pattern extraction.
	DefaultMinPatternSuccessRate = 0.75

	// DefaultDecayRate is carried for configuration compatibility; see
	// Options.DecayRate.
	DefaultDecayRate = 0.95

	// promotionSuccessRate is the success rate above which an episodic
	// exact hit is offered to the gate for promotion.
	promotionSuccessRate = 0.7

	// maxPatternSteps caps the abstracted step sequence of an extracted
	// pattern.
	maxPatternSteps = 10
)

// Options configures a Cache. Use DefaultOptions for sensible defaults.
type Options struct {
	// WorkingMemoryCapacity is the working-memory slot budget (default: 7).
	WorkingMemoryCapacity int

	// CacheThreshold is the minimum confidence for working-memory
	// admission (default: 0.6).
	CacheThreshold float64

	// SimilarityThreshold is the default minimum similarity score for
	// non-exact retrieval, overridable per call (default: 0.7).
	SimilarityThreshold float64

	// MinPatternSuccessRate is the default success-rate floor for pattern
	// extraction, overridable per call (default: 0.75).
	MinPatternSuccessRate float64

	// DecayRate is accepted and stored but never read by retrieval,
	// admission or extraction: time-based relevance decay is not
	// implemented. The knob exists only so configurations carrying it
	// keep loading (default: 0.95).
	DecayRate float64

	// Scorer computes similarity for non-exact retrieval
	// (default: JaccardScorer).
	Scorer Scorer

	// ComparePrompts switches similarity comparison from canonical JSON
	// to the extracted user-prompt text of both contexts.
	ComparePrompts bool
}

// DefaultOptions returns Options with the default values.
func DefaultOptions() Options {
	return Options{
		WorkingMemoryCapacity: DefaultWorkingMemoryCapacity,
		CacheThreshold:        DefaultCacheThreshold,
		SimilarityThreshold:   DefaultSimilarityThreshold,
		MinPatternSuccessRate: DefaultMinPatternSuccessRate,
		DecayRate:             DefaultDecayRate,
		Scorer:                JaccardScorer{},
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.WorkingMemoryCapacity < 1 {
		return fmt.Errorf("WorkingMemoryCapacity must be >= 1, got %d", o.WorkingMemoryCapacity)
	}
	if o.CacheThreshold < 0 || o.CacheThreshold > 1 {
		return fmt.Errorf("CacheThreshold must be in [0,1], got %v", o.CacheThreshold)
	}
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("SimilarityThreshold must be in [0,1], got %v", o.SimilarityThreshold)
	}
	if o.MinPatternSuccessRate < 0 || o.MinPatternSuccessRate > 1 {
		return fmt.Errorf("MinPatternSuccessRate must be in [0,1], got %v", o.MinPatternSuccessRate)
	}
	if o.DecayRate < 0 || o.DecayRate > 1 {
		return fmt.Errorf("DecayRate must be in [0,1], got %v", o.DecayRate)
	}
	if o.Scorer == nil {
		return fmt.Errorf("Scorer is required")
	}
	return nil
}

// Cache is the reasoning-trace cache facade. It owns both memory tiers,
// the extracted pattern store and the running statistics, and serializes
// every operation behind a single mutex: no operation is safe to
// interleave partially with another, so the capacity and tier-exclusivity
// invariants always hold.
//
// Construct with New, share freely between goroutines, and Close on
// shutdown.
type Cache struct {
	id   string
	opts Options
	gate gate

	mu       sync.Mutex
	working  *tier
	episodic *tier
	patterns []*types.ReasoningPattern

	hits       int
	misses     int
	stepsSaved int

	closed bool
}

// New creates a Cache with the given options.
func New(opts Options) (*Cache, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return &Cache{
		id:   uuid.NewString(),
		opts: opts,
		gate: gate{
			capacity:       opts.WorkingMemoryCapacity,
			cacheThreshold: opts.CacheThreshold,
		},
		working:  newTier(),
		episodic: newTier(),
	}, nil
}

// ID returns the unique identifier of this cache instance.
func (c *Cache) ID() string {
	return c.id
}

// CacheReasoning stores a reasoning episode and returns the context
// fingerprint for caller-side indexing. The write never fails: states the
// gate admits occupy working memory (possibly displacing the least valuable
// resident into episodic memory), everything else lands in episodic memory
// directly, retained for future consolidation.
//
// Confidence is recorded verbatim; the caller asserts its meaning and no
// range validation is applied.
func (c *Cache) CacheReasoning(ctx types.Context, trace []string, values map[string]any, confidence float64) string {
	hash := HashContext(ctx)

	state := &types.ReasoningState{
		ContextHash:        hash,
		ContextData:        ctx.Clone(),
		ReasoningTrace:     append([]string(nil), trace...),
		IntermediateValues: values,
		Confidence:         confidence,
		Timestamp:          time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return hash
	}

	// A re-cache of a known context replaces the old state wherever the
	// new one lands; the stale entry in the other tier is dropped so a
	// hash is never resident in both.
	if c.gate.admit(state, c.working, c.episodic) {
		c.episodic.delete(hash)
		c.working.put(hash, state)
	} else {
		c.working.delete(hash)
		c.episodic.put(hash, state)
	}

	return hash
}

// UpdateOutcome reports the outcome of replaying a cached episode,
// incrementing the state's success or failure counter in whichever tier
// holds it. Unknown hashes are a silent no-op, not an error.
func (c *Cache) UpdateOutcome(hash string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.working.get(hash)
	if !ok {
		state, ok = c.episodic.get(hash)
	}
	if !ok {
		return
	}

	if success {
		state.SuccessCount++
	} else {
		state.FailureCount++
	}
}

// Statistics returns a snapshot of cache performance counters.
func (c *Cache) Statistics() types.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return types.Statistics{
		CacheID:             c.id,
		WorkingMemorySize:   c.working.len(),
		EpisodicMemorySize:  c.episodic.len(),
		PatternCount:        len(c.patterns),
		CacheHitRate:        hitRate,
		ReasoningStepsSaved: c.stepsSaved,
		TotalRequests:       total,
		Hits:                c.hits,
		Misses:              c.misses,
	}
}

// Patterns returns a snapshot of every extracted pattern, in extraction
// order.
func (c *Cache) Patterns() []*types.ReasoningPattern {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*types.ReasoningPattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Close releases the cache's contents. Closing is idempotent; operations
// on a closed cache degrade to misses and no-ops. Statistics remain
// readable after Close.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.working = newTier()
	c.episodic = newTier()
	c.patterns = nil
	return nil
}
