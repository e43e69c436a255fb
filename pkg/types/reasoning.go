package types

import "time"

// ReasoningState is a cached reasoning episode: the trace of steps an
// expensive reasoning process produced for one context, plus the metadata
// needed to decide whether the episode is worth keeping in working memory.
//
// A state lives in exactly one tier at a time (working or episodic) and is
// moved, never duplicated, between them. Only the outcome counters mutate
// after creation; everything else is fixed at cache-write time.
type ReasoningState struct {
	// ContextHash is the stable fingerprint of the originating context
	// and the primary key in the tier that owns this state.
	ContextHash string `json:"context_hash"`

	// ContextData is the state's own copy of the original context. It is
	// used only for similarity comparison and critic verification.
	ContextData Context `json:"context_data"`

	// ReasoningTrace is the ordered sequence of atomic reasoning steps.
	// Order is significant: callers replay the steps in sequence.
	ReasoningTrace []string `json:"reasoning_trace"`

	// IntermediateValues holds free-form named scratch data the caller
	// may reuse alongside the trace.
	IntermediateValues map[string]any `json:"intermediate_values,omitempty"`

	// Confidence is the producer's self-reported confidence in [0,1] at
	// cache-write time. It is accepted verbatim (no range validation)
	// and immutable once written.
	Confidence float64 `json:"confidence"`

	// Timestamp is the creation time, informational only.
	Timestamp time.Time `json:"timestamp"`

	// SuccessCount and FailureCount track reported outcomes for this
	// episode. They are the only mutable fields.
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// SuccessRate returns the observed success ratio for this state, or 0.5
// when no outcomes have been reported yet (uninformative prior).
func (s *ReasoningState) SuccessRate() float64 {
	total := s.SuccessCount + s.FailureCount
	if total == 0 {
		return 0.5
	}
	return float64(s.SuccessCount) / float64(total)
}

// Value is the admission score used by the working-memory gate:
// confidence weighted by the observed success rate.
func (s *ReasoningState) Value() float64 {
	return s.Confidence * s.SuccessRate()
}

// Snapshot returns a detached copy of the state. Retrieval hands snapshots
// to callers so that later outcome updates inside the cache cannot race
// with the caller's reads.
func (s *ReasoningState) Snapshot() *ReasoningState {
	if s == nil {
		return nil
	}

	out := *s
	out.ContextData = s.ContextData.Clone()
	out.ReasoningTrace = append([]string(nil), s.ReasoningTrace...)
	if s.IntermediateValues != nil {
		values := make(map[string]any, len(s.IntermediateValues))
		for k, v := range s.IntermediateValues {
			values[k] = v
		}
		out.IntermediateValues = values
	}
	return &out
}

// ReasoningPattern is an abstracted, reusable sequence of steps distilled
// from multiple successful cached episodes. Patterns are immutable after
// extraction except for the caller-owned Uses counter.
type ReasoningPattern struct {
	// PatternID uniquely identifies this extraction. It embeds a running
	// count of previously stored patterns as a disambiguator.
	PatternID string `json:"pattern_id"`

	// PatternType is the caller-supplied tag (e.g. "deductive").
	PatternType string `json:"pattern_type"`

	// Steps is the deduplicated ordered step sequence, capped at ten
	// entries, ordered by first appearance across contributing episodes.
	Steps []string `json:"steps"`

	// SuccessContexts lists the context hashes of contributing episodes.
	SuccessContexts []string `json:"success_contexts"`

	// AvgSuccessRate is the arithmetic mean of the contributing episodes'
	// success rates at extraction time.
	AvgSuccessRate float64 `json:"avg_success_rate"`

	// Uses counts applications of the pattern. Extraction initializes it
	// to zero and never increments it; callers own this counter.
	Uses int `json:"uses"`
}
