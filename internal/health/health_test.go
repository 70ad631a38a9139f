package health

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestChecker_RunAll(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("jira", func(ctx context.Context) Status { return StatusOK })
	c.Register("store", func(ctx context.Context) Status { return StatusDown })

	results := c.RunAll(context.Background())
	assert.Equal(t, StatusOK, results["jira"])
	assert.Equal(t, StatusDown, results["store"])
}

func TestChecker_IsReady(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.True(t, c.IsReady(context.Background()), "no checks means ready")

	c.Register("jira", func(ctx context.Context) Status { return StatusOK })
	assert.True(t, c.IsReady(context.Background()))

	c.Register("store", func(ctx context.Context) Status { return StatusDown })
	assert.False(t, c.IsReady(context.Background()))
}
