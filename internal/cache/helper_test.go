package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProject struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := GetClient()
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(prev)
		_ = rdb.Close()
		mr.Close()
	})
	return mr
}

func TestAside_FetchesOnceThenServesFromCache(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedProject) func() error {
		return func() error {
			calls++
			*dest = cachedProject{ID: 4, Title: "Ledger"}
			return nil
		}
	}

	var first cachedProject
	require.NoError(t, Aside(ctx, ProjectKey(4), &first, ProjectTTL, fetch(&first)))
	var second cachedProject
	require.NoError(t, Aside(ctx, ProjectKey(4), &second, ProjectTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Ledger", second.Title)
	assert.True(t, mr.Exists("project:4"))

	InvalidateProject(ctx, 4)
	assert.False(t, mr.Exists("project:4"))
}

func TestAside_PropagatesFetchError(t *testing.T) {
	useMiniredis(t)
	boom := errors.New("db down")

	var dest cachedProject
	err := Aside(context.Background(), ProjectKey(9), &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAside_WithoutClient(t *testing.T) {
	prev := GetClient()
	SetClient(nil)
	t.Cleanup(func() { SetClient(prev) })

	var dest cachedProject
	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), ProjectKey(1), &dest, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	prev := GetClient()
	t.Cleanup(func() { SetClient(prev) })

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		InitRedis(addr)
		c := GetClient()
		require.NotNil(t, c, addr)
		require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute).Err())
		_ = c.Close()
	}

	InitRedis("redis://%zz")
	assert.Nil(t, GetClient())
}
