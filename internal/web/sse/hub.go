package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Render builds the message for one viewer. A nil result skips that viewer.
type Render func(userID string) []byte

// Hub fans SSE messages out to lobby viewers. Messages are rendered per
// viewer so each one can see a list that leaves them out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	fanout     chan Render
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		logger:     logger.With(slog.String("component", "sse")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		fanout:     make(chan Render, 64),
		done:       make(chan struct{}),
	}
}

// Run owns client membership until Close
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case render := <-h.fanout:
			h.deliver(render)
		case <-h.done:
			h.shutdown()
			return
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("lobby viewer joined",
		slog.String("user_id", c.userID),
		slog.Int("viewers", n))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("lobby viewer left",
		slog.String("user_id", c.userID),
		slog.Duration("connected_for", time.Since(c.connectedAt)),
		slog.Int("viewers", n))
}

// deliver renders once per distinct user, so several tabs of one user share a message
func (h *Hub) deliver(render Render) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rendered := make(map[string][]byte, len(h.clients))
	dropped := 0
	for c := range h.clients {
		msg, ok := rendered[c.userID]
		if !ok {
			msg = render(c.userID)
			rendered[c.userID] = msg
		}
		if msg == nil {
			continue
		}
		select {
		case c.send <- msg:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("sse messages dropped, viewer buffers full", slog.Int("dropped", dropped))
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.logger.Info("sse hub stopped", slog.Int("disconnected_viewers", n))
}

// Register adds a client to the hub. It reports false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send queues a per-viewer message
func (h *Hub) Send(render Render) {
	select {
	case h.fanout <- render:
	case <-h.done:
	default:
		h.logger.Warn("sse fanout dropped, hub queue full")
	}
}

// Broadcast sends the same message to every viewer
func (h *Hub) Broadcast(message []byte) {
	h.Send(func(string) []byte { return message })
}

// BroadcastEvent sends a named SSE event to every viewer
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub. It is safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage frames data as one event, prefixing every line with "data: "
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r and one trailing newline
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
