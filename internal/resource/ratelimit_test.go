package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_AllowsBurstThenThrottles(t *testing.T) {
	limiter := NewDomainLimiter(2, 2)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		err := limiter.Wait(ctx, "https://a.example.com/p/1")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	// third request exceeds the burst allowance and must wait.
	err := limiter.Wait(ctx, "https://a.example.com/p/2")
	require.NoError(t, err)
	assert.Greater(t, time.Since(start), 100*time.Millisecond)
}

func TestDomainLimiter_SeparateHostsDoNotShareBudget(t *testing.T) {
	limiter := NewDomainLimiter(1, 1)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "https://a.example.com/p/1"))
	require.NoError(t, limiter.Wait(ctx, "https://b.example.com/p/1"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestDomainLimiter_EmptyHostNeverBlocks(t *testing.T) {
	limiter := NewDomainLimiter(0.001, 1)
	err := limiter.Wait(context.Background(), "not-a-url")
	assert.NoError(t, err)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "a.example.com", hostOf("https://a.example.com/p/1"))
	assert.Equal(t, "", hostOf("http://%zz"))
}
