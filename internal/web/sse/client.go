package sse

import (
	"net/http"
	"time"
)

const (
	keepalivePeriod = 30 * time.Second
	// A viewer this far behind is dropped from fanout until it catches up
	clientBuffer = 256
)

var (
	connectedEvent = formatSSEMessage("connected", `{"status":"connected"}`)
	keepalive      = []byte(": keepalive\n\n")
)

// Client is one open lobby event stream
type Client struct {
	hub         *Hub
	userID      string
	send        chan []byte
	connectedAt time.Time
}

func NewClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:         hub,
		userID:      userID,
		send:        make(chan []byte, clientBuffer),
		connectedAt: time.Now(),
	}
}

// Messages is closed when the hub drops the client
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// ServeSSE holds the request open and relays hub messages to userID until the
// browser goes away or the hub closes. initial, if set, follows the connected event.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, userID string, initial []byte) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's read and write timeouts
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(hub, userID)
	if !hub.Register(client) {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	write := func(b []byte) bool {
		if _, err := w.Write(b); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !write(append(connectedEvent[:len(connectedEvent):len(connectedEvent)], initial...)) {
		return
	}

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok || !write(msg) {
				return
			}
		case <-ticker.C:
			if !write(keepalive) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
