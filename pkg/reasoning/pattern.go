package reasoning

import (
	"fmt"

	"github.com/agentcache/agentcache-go/pkg/types"
)

// ExtractOptions configures a pattern extraction. The zero value uses the
// cache-level defaults.
type ExtractOptions struct {
	// MinSuccessRate overrides the cache's success-rate floor for this
	// call when > 0.
	MinSuccessRate float64
}

// ExtractPattern consolidates the successful episodes of both tiers into a
// reusable reasoning pattern tagged with patternType.
//
// Every resident whose success rate meets the floor and whose trace is
// non-empty contributes; their traces are concatenated in tier iteration
// order (working memory first), deduplicated preserving first appearance
// and capped at ten steps. The pattern's success rate is the arithmetic
// mean of the contributors'. Extraction reads the tiers without mutating
// or evicting any state.
//
// Returns false when no episode qualifies; no pattern record is created in
// that case. Repeated calls with the same inputs create distinct pattern
// records: extraction is idempotent in effect, not in identity.
func (c *Cache) ExtractPattern(patternType string, opts ExtractOptions) (*types.ReasoningPattern, bool) {
	minRate := opts.MinSuccessRate
	if minRate <= 0 {
		minRate = c.opts.MinPatternSuccessRate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}

	var contributors []*types.ReasoningState
	for _, state := range append(c.working.states(), c.episodic.states()...) {
		if state.SuccessRate() >= minRate && len(state.ReasoningTrace) > 0 {
			contributors = append(contributors, state)
		}
	}
	if len(contributors) == 0 {
		return nil, false
	}

	seen := make(map[string]struct{})
	var steps []string
	var contexts []string
	rateSum := 0.0

	for _, state := range contributors {
		contexts = append(contexts, state.ContextHash)
		rateSum += state.SuccessRate()

		for _, step := range state.ReasoningTrace {
			if _, ok := seen[step]; ok {
				continue
			}
			seen[step] = struct{}{}
			if len(steps) < maxPatternSteps {
				steps = append(steps, step)
			}
		}
	}

	pattern := &types.ReasoningPattern{
		PatternID:       fmt.Sprintf("pattern_%s_%d", patternType, len(c.patterns)),
		PatternType:     patternType,
		Steps:           steps,
		SuccessContexts: contexts,
		AvgSuccessRate:  rateSum / float64(len(contributors)),
		Uses:            0,
	}

	c.patterns = append(c.patterns, pattern)
	return pattern, true
}
