package types

// Statistics is a point-in-time snapshot of cache performance counters,
// returned by the cache facade for external reporting.
type Statistics struct {
	// CacheID identifies the cache instance that produced this snapshot.
	CacheID string `json:"cache_id"`

	// WorkingMemorySize is the number of states resident in the bounded
	// working-memory tier.
	WorkingMemorySize int `json:"working_memory_size"`

	// EpisodicMemorySize is the number of states in the unbounded
	// episodic tier.
	EpisodicMemorySize int `json:"episodic_memory_size"`

	// PatternCount is the number of extracted reasoning patterns.
	PatternCount int `json:"pattern_count"`

	// CacheHitRate is hits/(hits+misses), or 0.0 before any request.
	CacheHitRate float64 `json:"cache_hit_rate"`

	// ReasoningStepsSaved is the cumulative length of every returned
	// trace, i.e. the recomputation the cache has avoided.
	ReasoningStepsSaved int `json:"reasoning_steps_saved"`

	// TotalRequests is hits plus misses.
	TotalRequests int `json:"total_requests"`

	// Hits and Misses are the raw retrieval counters behind CacheHitRate.
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}
