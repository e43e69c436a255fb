package reasoning

import "time"

// TraceEventKind classifies each retrieval trace event by type.
type TraceEventKind string

const (
	// KindLookupStarted is emitted at the beginning of a retrieval.
	KindLookupStarted TraceEventKind = "lookup_started"

	// KindExactHit is emitted when the query hash is found directly in a
	// tier.
	KindExactHit TraceEventKind = "exact_hit"

	// KindPromoted is emitted when an episodic exact hit is promoted into
	// working memory.
	KindPromoted TraceEventKind = "promoted"

	// KindScoredCandidate is emitted once per candidate scored during the
	// similarity scan.
	KindScoredCandidate TraceEventKind = "scored_candidate"

	// KindVerification is emitted after the critic has judged a
	// similarity match.
	KindVerification TraceEventKind = "verification"

	// KindSimilarityHit is emitted when a similarity match is returned.
	KindSimilarityHit TraceEventKind = "similarity_hit"

	// KindMiss is emitted when the retrieval found nothing usable.
	KindMiss TraceEventKind = "miss"
)

// Tier labels used in trace events.
const (
	TierWorking  = "working"
	TierEpisodic = "episodic"
)

// TraceEvent is a single structured event emitted during a retrieval when
// the caller supplies a trace sink. Events are purely observational: they
// never affect retrieval semantics.
type TraceEvent struct {
	// Kind identifies the event type.
	Kind TraceEventKind `json:"kind"`

	// At is the wall-clock time the event was recorded.
	At time.Time `json:"at"`

	// QueryHash is the fingerprint of the queried context.
	QueryHash string `json:"query_hash,omitempty"`

	// ContextHash is the candidate or matched state's fingerprint, for
	// per-state events.
	ContextHash string `json:"context_hash,omitempty"`

	// Tier names the tier involved ("working" or "episodic").
	Tier string `json:"tier,omitempty"`

	// Score is the similarity score for scored_candidate and
	// similarity_hit events.
	Score float64 `json:"score,omitempty"`

	// Verified reports the critic verdict for verification events.
	Verified bool `json:"verified,omitempty"`
}

// TraceSink receives retrieval trace events. Sinks are invoked
// synchronously while the cache lock is held and must be fast.
type TraceSink func(TraceEvent)

// emit sends an event to the sink if one is set.
func (sink TraceSink) emit(e TraceEvent) {
	if sink != nil {
		e.At = time.Now()
		sink(e)
	}
}
