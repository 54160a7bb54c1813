package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"devhub/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrHubClosed       = errors.New("notification hub is shut down")
)

// Hub maps user IDs to their open notification connections.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	closeOnce  sync.Once
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes a connection and closes its send queue. Calling it
// twice for the same client is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.totalConns--
	middleware.ActiveWebSockets.Dec()
	close(client.Send)
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Broadcast sends message to every connection of userID.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[userID] {
		c.TrySend(data)
	}
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// StartWiring subscribes the hub to the notifier's channels.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == broadcastChannel {
			h.BroadcastAll(payload)
			return
		}
		userID, ok := parseUserChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown sends a going-away frame to every connection and closes it.
func (h *Hub) Shutdown(_ context.Context) error {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.closed = true

		for userID, clients := range h.conns {
			for client := range clients {
				if client.Conn == nil {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
					middleware.Logger.Warn("failed to write close frame",
						slog.Uint64("user_id", uint64(userID)),
						slog.String("error", err.Error()))
				}
				_ = client.Conn.Close()
			}
		}
	})
	return nil
}
