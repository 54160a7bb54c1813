package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	ctx := context.Background()
	assert.NoError(t, n.PublishUser(ctx, 1, "payload"))
	assert.NoError(t, n.PublishBroadcast(ctx, "payload"))
	assert.NoError(t, n.PublishEvent(ctx, 1, NewEvent(EventProjectCreated, nil)))
	assert.NoError(t, n.StartPatternSubscriber(ctx, func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := parseUserChannel("notifications:user:42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"notifications:user:", "notifications:user:0", "notifications:user:x", "chat:conv:1"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestHub_StartWiringForwardsRedisMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	dev, err := hub.Register(5, nil)
	require.NoError(t, err)
	other, err := hub.Register(6, nil)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.PublishEvent(ctx, 5, NewEvent(EventContactRequestReceived, map[string]any{"id": 1})))

	select {
	case msg := <-dev.Send:
		var ev map[string]any
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, EventContactRequestReceived, ev["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
	assert.Empty(t, other.Send)

	require.NoError(t, n.BroadcastEvent(ctx, NewEvent(EventProjectCreated, map[string]any{"id": 9})))
	for _, c := range []*Client{dev, other} {
		select {
		case <-c.Send:
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast was not delivered")
		}
	}
}
