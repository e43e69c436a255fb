package reasoning

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/agentcache/agentcache-go/pkg/types"
)

// ErrCircuitOpen is returned by BreakerVerifier when the circuit breaker is
// open and verification requests are being rejected to prevent cascading
// failures of the backing service.
var ErrCircuitOpen = errors.New("critic circuit breaker is open")

// ErrRateLimited is returned by RateLimitedVerifier when a verification
// request exceeds the configured rate.
var ErrRateLimited = errors.New("critic invocation rate limited")

// Verifier is the critic hook: a caller-supplied check that cached
// reasoning transfers from the cached context to the new one. It is invoked
// at most once per retrieval, and only on the similarity-match path; exact
// hash hits never consult it.
//
// The verifier is expected to be cheap relative to recomputing the trace
// (typically a fast secondary model call). The cache imposes no timeout of
// its own: callers needing cancellation apply it through ctx or by wrapping
// the verifier. Any error is treated as verification failure — the match is
// rejected, never passed through.
type Verifier interface {
	Verify(ctx context.Context, next, cached types.Context) (bool, error)
}

// VerifierFunc adapts a plain function to the Verifier interface.
type VerifierFunc func(ctx context.Context, next, cached types.Context) (bool, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, next, cached types.Context) (bool, error) {
	return f(ctx, next, cached)
}

// safeVerify invokes the verifier and maps every failure mode — false
// verdict, error, or panic — to a rejection. Fail closed: a broken critic
// must never turn a similarity candidate into a hit.
func safeVerify(ctx context.Context, v Verifier, next, cached types.Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	valid, err := v.Verify(ctx, next, cached)
	if err != nil {
		return false
	}
	return valid
}

// BreakerConfig holds the circuit breaker settings for BreakerVerifier.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3.
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning
	// to half-open. Default: 30 seconds.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of successes required in
	// half-open state to close the circuit again. Default: 2.
	HalfOpenMaxSuccesses uint32
}

// BreakerVerifier wraps another verifier in a circuit breaker so that a
// failing critic backend stops being called for a cool-down period instead
// of slowing every similarity retrieval. While the circuit is open,
// verification fails immediately with ErrCircuitOpen (and the retrieval
// degrades to a miss).
//
// Only errors trip the breaker; a well-formed "no" verdict is a success.
type BreakerVerifier struct {
	inner   Verifier
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerVerifier creates a BreakerVerifier with default settings.
func NewBreakerVerifier(inner Verifier) *BreakerVerifier {
	return NewBreakerVerifierWithConfig(inner, BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerVerifierWithConfig creates a BreakerVerifier with custom
// settings. Zero-valued fields fall back to the defaults.
func NewBreakerVerifierWithConfig(inner Verifier, cfg BreakerConfig) *BreakerVerifier {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxSuccesses == 0 {
		cfg.HalfOpenMaxSuccesses = 2
	}

	settings := gobreaker.Settings{
		Name:        "CriticCircuitBreaker",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}

	return &BreakerVerifier{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Verify runs the wrapped verifier through the circuit breaker.
func (bv *BreakerVerifier) Verify(ctx context.Context, next, cached types.Context) (bool, error) {
	result, err := bv.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return bv.inner.Verify(ctx, next, cached)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return false, ErrCircuitOpen
		}
		return false, err
	}

	verdict, ok := result.(bool)
	if !ok {
		return false, nil
	}
	return verdict, nil
}

// State returns the breaker state as a string: "closed", "open" or
// "half-open".
func (bv *BreakerVerifier) State() string {
	switch bv.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// RateLimitedVerifier wraps another verifier in a token-bucket rate limit.
// Verification requests beyond the budget fail immediately with
// ErrRateLimited rather than blocking the retrieval path, so a burst of
// similarity matches cannot stampede the critic backend.
type RateLimitedVerifier struct {
	inner   Verifier
	limiter *rate.Limiter
}

// NewRateLimitedVerifier creates a verifier allowing perSec invocations per
// second with the given burst size.
func NewRateLimitedVerifier(inner Verifier, perSec float64, burst int) *RateLimitedVerifier {
	return &RateLimitedVerifier{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// Verify consumes one token and delegates to the wrapped verifier, or fails
// closed when the budget is exhausted.
func (rv *RateLimitedVerifier) Verify(ctx context.Context, next, cached types.Context) (bool, error) {
	if !rv.limiter.Allow() {
		return false, ErrRateLimited
	}
	return rv.inner.Verify(ctx, next, cached)
}
