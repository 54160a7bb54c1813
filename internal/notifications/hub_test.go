package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"devhub/internal/observability"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHub_RegisterAndLimits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewHub()
	clients := make([]*Client, 0, maxConnsPerUser)
	for range maxConnsPerUser {
		c, err := hub.Register(7, nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	_, err := hub.Register(7, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)
	assert.Equal(t, maxConnsPerUser, hub.Connections(7))

	_, err = hub.Register(8, nil)
	require.NoError(t, err)

	for _, c := range clients {
		hub.UnregisterClient(c)
		hub.UnregisterClient(c)
	}
	assert.Zero(t, hub.Connections(7))
	assert.Equal(t, 1, hub.Connections(8))

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	_, err = hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHub_BroadcastTargetsUser(t *testing.T) {
	hub := NewHub()
	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	aliceTab, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "for-alice")
	assert.Equal(t, "for-alice", string(<-alice.Send))
	assert.Equal(t, "for-alice", string(<-aliceTab.Send))
	assert.Empty(t, bob.Send)

	hub.BroadcastAll("everyone")
	for _, c := range []*Client{alice, aliceTab, bob} {
		assert.Equal(t, "everyone", string(<-c.Send))
	}
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	full := observability.WebSocketBackpressureDrops.WithLabelValues("full")
	before := promtestutil.ToFloat64(full)

	for range sendBufferSize + 2 {
		c.TrySend([]byte("x"))
	}
	assert.Equal(t, before+2, promtestutil.ToFloat64(full))
	assert.Len(t, c.Send, sendBufferSize)

	hub.UnregisterClient(c)
	closed := observability.WebSocketBackpressureDrops.WithLabelValues("closed")
	beforeClosed := promtestutil.ToFloat64(closed)
	c.TrySend([]byte("late"))
	assert.Equal(t, beforeClosed+1, promtestutil.ToFloat64(closed))
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventProjectUpvoted, map[string]any{"project_id": 4})
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "project_upvoted", decoded["type"])
	assert.WithinDuration(t, time.Now(), ev.Timestamp, time.Minute)
}
