package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLocal(t *testing.T) *LocalCache {
	t.Helper()
	c := NewLocalCache(time.Hour, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLocalCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	c.cleanup()
	assert.Empty(t, c.data)
}

func TestLocalCacheIncr(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)

	n, err := c.Incr(ctx, "gen:/dashboard/leads")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, _ = c.Incr(ctx, "gen:/dashboard/leads")
	assert.EqualValues(t, 2, n)

	require.NoError(t, c.Set(ctx, "word", "abc", 0))
	_, err = c.Incr(ctx, "word")
	assert.Error(t, err)
}

func TestLocalCacheSetMarshalsStructs(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)
	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRevalidatorBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)
	r := NewRevalidator(c, zap.NewNop())

	before := r.Key(ctx, "/dashboard/sales", "stats")
	assert.Equal(t, before, r.Key(ctx, "/dashboard/sales", "stats"))

	r.Revalidate(ctx, "/dashboard/sales", "/dashboard/backoffice")
	after := r.Key(ctx, "/dashboard/sales", "stats")
	assert.NotEqual(t, before, after)
	assert.EqualValues(t, 1, r.Generation(ctx, "/dashboard/backoffice"))
	assert.EqualValues(t, 0, r.Generation(ctx, "/admin"))
}

func TestGetJSONLoadsOnceUntilRevalidated(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)
	r := NewRevalidator(c, zap.NewNop())

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"WIN", "CLARO"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetJSON(ctx, c, r.Key(ctx, "/admin/settings", "operators"), time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"WIN", "CLARO"}, v)
	}
	assert.Equal(t, 1, calls)

	r.Revalidate(ctx, "/admin/settings")
	_, err := GetJSON(ctx, c, r.Key(ctx, "/admin/settings", "operators"), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetJSONDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := newLocal(t)
	boom := errors.New("db down")

	_, err := GetJSON(ctx, c, "k", time.Minute, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewFallsBackToLocal(t *testing.T) {
	c := New("", zap.NewNop())
	defer c.Close()
	_, ok := c.(*LocalCache)
	assert.True(t, ok)

	c2 := New("not a url", zap.NewNop())
	defer c2.Close()
	_, ok = c2.(*LocalCache)
	assert.True(t, ok)
}
