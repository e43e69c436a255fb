package reasoning

import "github.com/agentcache/agentcache-go/pkg/types"

// gate is the admission controller for the working-memory tier. It decides
// whether a new or promoted state should occupy working memory and, when
// displacement is needed, which resident to consolidate into episodic
// memory. Eviction always means a tier transfer, never deletion.
type gate struct {
	// capacity is the working-memory slot budget.
	capacity int

	// cacheThreshold is the minimum confidence for admission.
	cacheThreshold float64
}

// admit reports whether candidate should enter working memory, evicting the
// least valuable resident into episodic as a side effect when displacement
// is required.
//
// Policy, in order:
//  1. reject when candidate confidence is below the cache threshold;
//  2. admit when working memory has a free slot, or when the candidate's
//     hash already occupies one (a replace does not grow the tier);
//  3. otherwise displace only when the candidate's value strictly exceeds
//     the minimum resident value. The minimum resident is chosen by
//     insertion order on ties, keeping eviction deterministic.
func (g *gate) admit(candidate *types.ReasoningState, working, episodic *tier) bool {
	if candidate.Confidence < g.cacheThreshold {
		return false
	}

	if working.len() < g.capacity || working.has(candidate.ContextHash) {
		return true
	}

	minHash := ""
	minValue := 0.0
	for i, resident := range working.states() {
		value := resident.Value()
		if i == 0 || value < minValue {
			minValue = value
			minHash = resident.ContextHash
		}
	}

	if candidate.Value() <= minValue {
		return false
	}

	working.transferTo(minHash, episodic)
	return true
}
