// Command agentcache-demo exercises the reasoning cache end to end:
// it caches percentage-arithmetic reasoning episodes, retrieves them by
// exact and similarity match, reports outcomes and extracts a reusable
// pattern, then prints the cache statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/agentcache/agentcache-go/internal/config"
	"github.com/agentcache/agentcache-go/pkg/reasoning"
	"github.com/agentcache/agentcache-go/pkg/types"
)

var (
	configPath = flag.String("config", "", "Path to YAML config file (optional, uses env vars by default)")
	verbose    = flag.Bool("verbose", false, "Print retrieval trace events")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cache, err := reasoning.New(cfg.ToOptions())
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	sessionID := uuid.NewString()
	log.Printf("Session %s using cache %s", sessionID, cache.ID())

	ctx := context.Background()

	// Scenario 1: first time solving "what is 15% of 80?".
	first := types.Context{
		"problem_type": "percentage",
		"operation":    "find_percentage_of_number",
		"percentage":   15,
		"number":       80,
	}
	firstTrace := []string{
		"Convert percentage to decimal: 15% = 0.15",
		"Multiply decimal by number: 0.15 x 80",
		"Calculate result: 12",
	}

	hash := cache.CacheReasoning(first, firstTrace, map[string]any{
		"decimal_form": 0.15,
		"product":      12,
	}, 0.95)
	cache.UpdateOutcome(hash, true)

	fmt.Println("=== Cached first reasoning episode ===")
	fmt.Printf("Context hash: %s\n", hash)
	fmt.Printf("Steps: %d\n", len(firstTrace))

	// Scenario 2: a similar problem, "what is 20% of 100?" — similarity
	// retrieval with a local critic confirming the reasoning transfers.
	similar := types.Context{
		"problem_type": "percentage",
		"operation":    "find_percentage_of_number",
		"percentage":   20,
		"number":       100,
	}

	verifier := reasoning.Verifier(reasoning.VerifierFunc(sameProblemType))
	verifier = reasoning.NewRateLimitedVerifier(verifier, cfg.Critic.RatePerSec, cfg.Critic.Burst)
	verifier = reasoning.NewBreakerVerifierWithConfig(verifier, cfg.BreakerConfig())

	opts := reasoning.RetrieveOptions{
		SimilarityThreshold: 0.6,
		Verifier:            verifier,
	}
	if *verbose {
		opts.Trace = func(e reasoning.TraceEvent) {
			log.Printf("trace: %s hash=%s tier=%s score=%.2f", e.Kind, e.ContextHash, e.Tier, e.Score)
		}
	}

	if state, ok := cache.RetrieveReasoning(ctx, similar, opts); ok {
		fmt.Println("\n=== Cache hit: retrieved similar reasoning ===")
		fmt.Printf("Retrieved trace with %d steps:\n", len(state.ReasoningTrace))
		for i, step := range state.ReasoningTrace {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	} else {
		fmt.Println("\n=== Cache miss for similar problem ===")
	}

	// Scenario 3: cache more episodes and extract a pattern.
	for _, p := range []struct{ pct, num int }{{25, 200}, {10, 50}, {30, 150}} {
		episode := types.Context{
			"problem_type": "percentage",
			"operation":    "find_percentage_of_number",
			"percentage":   p.pct,
			"number":       p.num,
		}
		trace := []string{
			fmt.Sprintf("Convert percentage to decimal: %d%% = %.2f", p.pct, float64(p.pct)/100),
			fmt.Sprintf("Multiply decimal by number: %.2f x %d", float64(p.pct)/100, p.num),
			fmt.Sprintf("Calculate result: %.2f", float64(p.pct)/100*float64(p.num)),
		}
		h := cache.CacheReasoning(episode, trace, nil, 0.9)
		cache.UpdateOutcome(h, true)
	}

	if pattern, ok := cache.ExtractPattern("percentage_calculation", reasoning.ExtractOptions{MinSuccessRate: 0.7}); ok {
		fmt.Println("\n=== Extracted reasoning pattern ===")
		fmt.Printf("Pattern ID: %s\n", pattern.PatternID)
		fmt.Printf("Success rate: %.0f%%\n", pattern.AvgSuccessRate*100)
		fmt.Println("Abstract steps:")
		for i, step := range pattern.Steps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}

	fmt.Println("\n=== Cache statistics ===")
	stats := cache.Statistics()
	fmt.Printf("Working memory size: %d\n", stats.WorkingMemorySize)
	fmt.Printf("Episodic memory size: %d\n", stats.EpisodicMemorySize)
	fmt.Printf("Patterns: %d\n", stats.PatternCount)
	fmt.Printf("Hit rate: %.2f\n", stats.CacheHitRate)
	fmt.Printf("Reasoning steps saved: %d\n", stats.ReasoningStepsSaved)
	fmt.Printf("Total requests: %d\n", stats.TotalRequests)
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadConfigFromFile(*configPath)
	}
	return config.LoadConfig()
}

// sameProblemType is the demo critic: cached reasoning transfers when both
// contexts describe the same problem type and operation.
func sameProblemType(_ context.Context, next, cached types.Context) (bool, error) {
	for _, key := range []string{"problem_type", "operation"} {
		a, _ := next[key].(string)
		b, _ := cached[key].(string)
		if !strings.EqualFold(a, b) {
			return false, nil
		}
	}
	return true, nil
}
