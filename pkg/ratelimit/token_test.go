package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiter_ConsumesBudget(t *testing.T) {
	l := NewTokenLimiter(600)

	require.NoError(t, l.Wait(context.Background(), 400))
	assert.InDelta(t, 200, l.Remaining(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, 500), "500 tokens need ~30s of refill")
}

func TestTokenLimiter_CapsOversizedRequest(t *testing.T) {
	l := NewTokenLimiter(10)
	require.NoError(t, l.Wait(context.Background(), 500))
	assert.Zero(t, l.Remaining())
}

func TestTokenLimiter_UnlimitedWhenBudgetUnset(t *testing.T) {
	l := NewTokenLimiter(0)
	require.NoError(t, l.Wait(context.Background(), 1_000_000))
	assert.Equal(t, -1, l.Remaining())
}
