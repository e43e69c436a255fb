package reasoning

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentcache/agentcache-go/pkg/types"
)

// RetrieveOptions configures a single retrieval. The zero value uses the
// cache-level defaults.
type RetrieveOptions struct {
	// SimilarityThreshold overrides the cache's similarity threshold for
	// this call when > 0.
	SimilarityThreshold float64

	// Verifier, when set, is consulted on a similarity (non-exact) match
	// before the hit is returned. A false verdict or any verifier error
	// rejects the match and the retrieval records a miss. Exact hash hits
	// never invoke the verifier.
	Verifier Verifier

	// Trace, when set, receives structured events describing the
	// retrieval. Purely observational.
	Trace TraceSink
}

// RetrieveReasoning looks up cached reasoning for the query context. The
// lookup order is strict and short-circuits on the first match:
//
//  1. exact fingerprint in working memory;
//  2. exact fingerprint in episodic memory, with promotion into working
//     memory (through the gate) when the state's success rate has proven
//     out;
//  3. best similarity candidate in working memory at or above the
//     threshold, else best candidate in episodic memory;
//  4. miss.
//
// A similarity match is confirmed by opts.Verifier when one is supplied;
// verification is vacuously true otherwise. Every hit adds the returned
// trace length to the steps-saved counter. The returned state is a
// detached snapshot.
//
// ctx is forwarded only to the verifier, the one collaborator that may
// block on I/O; the cache itself applies no timeout.
func (c *Cache) RetrieveReasoning(ctx context.Context, query types.Context, opts RetrieveOptions) (*types.ReasoningState, bool) {
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = c.opts.SimilarityThreshold
	}

	hash := HashContext(query)
	sink := opts.Trace

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}

	sink.emit(TraceEvent{Kind: KindLookupStarted, QueryHash: hash})

	// Exact match in working memory: the fast path, no verification
	// needed since hash equality is definitionally exact.
	if state, ok := c.working.get(hash); ok {
		sink.emit(TraceEvent{Kind: KindExactHit, QueryHash: hash, ContextHash: hash, Tier: TierWorking})
		c.recordHit(state)
		return state.Snapshot(), true
	}

	// Exact match in episodic memory, with promotion when proven.
	if state, ok := c.episodic.get(hash); ok {
		sink.emit(TraceEvent{Kind: KindExactHit, QueryHash: hash, ContextHash: hash, Tier: TierEpisodic})
		if state.SuccessRate() > promotionSuccessRate {
			if c.gate.admit(state, c.working, c.episodic) {
				c.episodic.transferTo(hash, c.working)
				sink.emit(TraceEvent{Kind: KindPromoted, QueryHash: hash, ContextHash: hash, Tier: TierWorking})
			}
		}
		c.recordHit(state)
		return state.Snapshot(), true
	}

	// Similarity scan: working memory first; episodic only when working
	// memory produced no candidate at the threshold.
	queryText := c.compareText(query)
	best, score := c.bestMatch(queryText, c.working, threshold, hash, TierWorking, sink)
	if best == nil {
		best, score = c.bestMatch(queryText, c.episodic, threshold, hash, TierEpisodic, sink)
	}

	if best != nil {
		if opts.Verifier != nil {
			verified := safeVerify(ctx, opts.Verifier, query, best.ContextData)
			sink.emit(TraceEvent{Kind: KindVerification, QueryHash: hash, ContextHash: best.ContextHash, Verified: verified})
			if !verified {
				// Rejected matches are indistinguishable from no
				// candidate at all.
				c.recordMiss(hash, sink)
				return nil, false
			}
		}
		sink.emit(TraceEvent{Kind: KindSimilarityHit, QueryHash: hash, ContextHash: best.ContextHash, Score: score})
		c.recordHit(best)
		return best.Snapshot(), true
	}

	c.recordMiss(hash, sink)
	return nil, false
}

// bestMatch scores every resident of t against the query text and returns
// the single best candidate whose score clears the threshold, or nil.
// Candidates are scored in parallel; selection walks the results in
// insertion order with a strict greater-than comparison, so the first
// encountered candidate wins ties.
func (c *Cache) bestMatch(queryText string, t *tier, threshold float64, queryHash, tierName string, sink TraceSink) (*types.ReasoningState, float64) {
	candidates := t.states()
	if len(candidates) == 0 {
		return nil, 0.0
	}

	scorer := c.opts.Scorer
	scores := iter.Map(candidates, func(s **types.ReasoningState) float64 {
		return scorer.Score(queryText, c.compareText((*s).ContextData))
	})

	var best *types.ReasoningState
	bestScore := 0.0
	for i, candidate := range candidates {
		score := scores[i]
		sink.emit(TraceEvent{Kind: KindScoredCandidate, QueryHash: queryHash, ContextHash: candidate.ContextHash, Tier: tierName, Score: score})
		if score > bestScore && score >= threshold {
			bestScore = score
			best = candidate
		}
	}
	return best, bestScore
}

// compareText derives the similarity comparison text for a context:
// canonical JSON, or the extracted prompt text in prompt mode.
func (c *Cache) compareText(ctx types.Context) string {
	if c.opts.ComparePrompts {
		return ctx.PromptText()
	}
	return ctx.CanonicalJSON()
}

// recordHit updates the hit counters for a returned state. Caller holds
// the lock.
func (c *Cache) recordHit(state *types.ReasoningState) {
	c.hits++
	c.stepsSaved += len(state.ReasoningTrace)
}

// recordMiss updates the miss counter. Caller holds the lock.
func (c *Cache) recordMiss(queryHash string, sink TraceSink) {
	c.misses++
	sink.emit(TraceEvent{Kind: KindMiss, QueryHash: queryHash})
}
