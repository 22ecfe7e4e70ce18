package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "budget:1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "budget:1", []byte(`{"name":"cut"}`), time.Minute))

	val, err := c.Get(ctx, "budget:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"cut"}`), val)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "budget:1", []byte("a"), time.Minute))
	require.NoError(t, c.Invalidate(ctx, "budget:1"))

	_, err := c.Get(ctx, "budget:1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheInvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "plans:nutrition:customer:c1", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "plans:steps:customer:c1", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "budgets:coach1", []byte("c"), time.Minute))

	require.NoError(t, c.InvalidatePrefix(ctx, "plans:"))

	_, err := c.Get(ctx, "plans:nutrition:customer:c1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, "plans:steps:customer:c1")
	assert.ErrorIs(t, err, ErrMiss)

	val, err := c.Get(ctx, "budgets:coach1")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), val)
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "budget:b1", BudgetKey("b1"))
	assert.Equal(t, "budgets:coach1", BudgetsKey("coach1"))
	assert.Equal(t, "plans:nutrition:lead:l1", PlansKey("nutrition", "lead:l1"))
	assert.Equal(t,
		[]string{"plans:workout:lead:l1", "plans:steps:lead:l1"},
		ClientPlansKeys([]string{"workout", "steps"}, "lead:l1"))
}
