package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmdesk/pm-backend/internal/projects/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	err = client.Ping(context.Background()).Err()
	require.NoError(t, err)

	return client, mr
}

func TestListingCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewListingCache(client, time.Minute)
	ctx := context.Background()

	items := []domain.ProjectDetails{{
		Project:   domain.Project{ID: 1, Name: "Apollo", Deadline: deadline()},
		Employees: []domain.Employee{{ID: "E1", Name: "Eve"}},
	}}

	t.Run("miss on empty cache", func(t *testing.T) {
		got, ok, err := cache.Get(ctx, false)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("stores listings per kind", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, false, items, 0))

		got, ok, err := cache.Get(ctx, false)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Apollo", got[0].Project.Name)
		assert.Equal(t, "E1", got[0].Employees[0].ID)

		_, ok, err = cache.Get(ctx, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("applies ttl", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, true, items, 0))
		assert.Equal(t, time.Minute, mr.TTL(deletedProjectsKey))

		mr.FastForward(2 * time.Minute)
		_, ok, err := cache.Get(ctx, true)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops both listings", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, false, items, 0))
		require.NoError(t, cache.Set(ctx, true, items, 0))
		require.NoError(t, cache.Invalidate(ctx))

		assert.False(t, mr.Exists(activeProjectsKey))
		assert.False(t, mr.Exists(deletedProjectsKey))

		v, err := cache.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("listing loaded before an invalidation is not stored", func(t *testing.T) {
		loadedAt, err := cache.Version(ctx)
		require.NoError(t, err)

		require.NoError(t, cache.Invalidate(ctx))
		require.NoError(t, cache.Set(ctx, false, items, loadedAt))

		_, ok, err := cache.Get(ctx, false)
		require.NoError(t, err)
		assert.False(t, ok)

		current, err := cache.Version(ctx)
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, false, items, current))

		_, ok, err = cache.Get(ctx, false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("corrupt payload surfaces an error", func(t *testing.T) {
		require.NoError(t, mr.Set(activeProjectsKey, "{not json"))

		_, ok, err := cache.Get(ctx, false)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestNewListingCache_DefaultTTL(t *testing.T) {
	cache := NewListingCache(nil, 0)
	assert.Equal(t, defaultListingTTL, cache.ttl)
}
