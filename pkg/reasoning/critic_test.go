package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcache/agentcache-go/pkg/types"
)

func acceptAll(context.Context, types.Context, types.Context) (bool, error) {
	return true, nil
}

func TestSafeVerify_True(t *testing.T) {
	ok := safeVerify(context.Background(), VerifierFunc(acceptAll), types.Context{}, types.Context{})
	assert.True(t, ok)
}

func TestSafeVerify_FalseVerdict(t *testing.T) {
	v := VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		return false, nil
	})
	assert.False(t, safeVerify(context.Background(), v, types.Context{}, types.Context{}))
}

func TestSafeVerify_ErrorFailsClosed(t *testing.T) {
	v := VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		return true, errors.New("backend unreachable")
	})
	assert.False(t, safeVerify(context.Background(), v, types.Context{}, types.Context{}),
		"an erroring verifier must never pass a match through")
}

func TestSafeVerify_PanicFailsClosed(t *testing.T) {
	v := VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		panic("verifier bug")
	})
	assert.False(t, safeVerify(context.Background(), v, types.Context{}, types.Context{}))
}

func TestBreakerVerifier_PassesVerdictsThrough(t *testing.T) {
	yes := NewBreakerVerifier(VerifierFunc(acceptAll))
	ok, err := yes.Verify(context.Background(), types.Context{}, types.Context{})
	require.NoError(t, err)
	assert.True(t, ok)

	no := NewBreakerVerifier(VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		return false, nil
	}))
	ok, err = no.Verify(context.Background(), types.Context{}, types.Context{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBreakerVerifier_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		calls++
		return false, errors.New("backend down")
	})

	bv := NewBreakerVerifierWithConfig(failing, BreakerConfig{
		MaxFailures: 2,
		Timeout:     time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := bv.Verify(ctx, types.Context{}, types.Context{})
		assert.False(t, ok)
		require.Error(t, err)
	}
	require.Equal(t, "open", bv.State())

	// While open, the inner verifier is not called.
	before := calls
	ok, err := bv.Verify(ctx, types.Context{}, types.Context{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls)
}

func TestBreakerVerifier_FalseVerdictIsNotAFailure(t *testing.T) {
	no := VerifierFunc(func(context.Context, types.Context, types.Context) (bool, error) {
		return false, nil
	})
	bv := NewBreakerVerifierWithConfig(no, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := bv.Verify(ctx, types.Context{}, types.Context{})
		require.NoError(t, err)
	}
	assert.Equal(t, "closed", bv.State())
}

func TestBreakerVerifier_CancelledContext(t *testing.T) {
	bv := NewBreakerVerifier(VerifierFunc(acceptAll))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := bv.Verify(ctx, types.Context{}, types.Context{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitedVerifier_FailsClosedWhenExhausted(t *testing.T) {
	rv := NewRateLimitedVerifier(VerifierFunc(acceptAll), 1, 1)

	ctx := context.Background()
	ok, err := rv.Verify(ctx, types.Context{}, types.Context{})
	require.NoError(t, err)
	assert.True(t, ok)

	// Second call inside the same second exceeds the budget.
	ok, err = rv.Verify(ctx, types.Context{}, types.Context{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrRateLimited)
}
