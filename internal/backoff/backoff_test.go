package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_DelayGrowsAndCaps(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 400 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0, 0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1, 0))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2, 0))
	// Capped beyond attempt 2.
	assert.Equal(t, 400*time.Millisecond, p.Delay(5, 0))
}

func TestPolicy_FloorWins(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 10 * time.Second}

	assert.Equal(t, 3*time.Second, p.Delay(0, 3*time.Second))
	// Floor below computed backoff has no effect.
	assert.Equal(t, 200*time.Millisecond, p.Delay(1, 50*time.Millisecond))
}

func TestPolicy_JitterBounded(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, MaxJitter: 50 * time.Millisecond}

	for i := 0; i < 100; i++ {
		d := p.Delay(0, 0)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 150*time.Millisecond)
	}
}

func TestPolicy_NonDecreasing(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 10 * time.Second}

	prev := time.Duration(0)
	for attempt := 0; attempt < 6; attempt++ {
		d := p.Delay(attempt, 0)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestSleep_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep_Completes(t *testing.T) {
	err := Sleep(context.Background(), time.Millisecond)
	require.NoError(t, err)
}
