package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/clashoffists/internal/api/apierr"
	"github.com/mcoot/clashoffists/internal/api/middleware"
	"github.com/mcoot/clashoffists/internal/api/request"
	"github.com/mcoot/clashoffists/internal/api/response"
	"github.com/mcoot/clashoffists/internal/services/game"
)

const (
	// Time allowed to write a frame to the peer
	liveWriteWait = 10 * time.Second

	// Time allowed between pongs before the peer is considered gone
	livePongWait = 60 * time.Second

	// Must be less than livePongWait
	livePingPeriod = livePongWait * 9 / 10

	liveMaxMessageSize = 4 << 10
	liveSendBuffer     = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveHandler serves the websocket play stream
type LiveHandler struct {
	gameService *game.Service
	logger      *slog.Logger

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(gameService *game.Service, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		gameService: gameService,
		logger:      logger.With(slog.String("component", "live-handler")),
		writeWait:   liveWriteWait,
		pongWait:    livePongWait,
		pingPeriod:  livePingPeriod,
	}
}

// liveClient is one websocket connection
type liveClient struct {
	conn     *websocket.Conn
	send     chan any
	done     chan struct{} // closed once writePump has exited
	username string
}

// Serve handles GET /api/v1/game/live
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &liveClient{
		conn:     conn,
		send:     make(chan any, liveSendBuffer),
		done:     make(chan struct{}),
		username: session.Username,
	}
	h.logger.Debug("live client connected", slog.String("username", c.username))

	go h.writePump(c)
	h.readPump(r.Context(), c)
	<-c.done
}

// deliver queues msg for the writer. It reports false once the writer is gone.
func (c *liveClient) deliver(msg any) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

// readPump handles inbound frames until the connection drops
func (h *LiveHandler) readPump(ctx context.Context, c *liveClient) {
	defer func() {
		close(c.send)
		h.logger.Debug("live client disconnected", slog.String("username", c.username))
	}()

	c.conn.SetReadLimit(liveMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	// The current state goes out first so clients can render immediately
	if state, err := h.gameService.Get(ctx, c.username); err == nil {
		if !c.deliver(response.LiveState{Type: response.LiveTypeState, Payload: game.PayloadFromState(state)}) {
			return
		}
	}

	for {
		var msg request.LiveMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("live read ended", slog.String("username", c.username), slog.String("error", err.Error()))
			}
			return
		}
		if !c.deliver(h.handle(ctx, c.username, msg)) {
			return
		}
	}
}

func (h *LiveHandler) handle(ctx context.Context, username string, msg request.LiveMessage) any {
	switch msg.Type {
	case request.LiveTypePlay:
		result, err := h.gameService.Play(ctx, username, msg.Choice)
		if err != nil {
			return h.liveError(username, err)
		}
		return response.LiveState{Type: response.LiveTypeState, Payload: game.PayloadFromResult(result)}
	case request.LiveTypeReset:
		if _, err := h.gameService.Reset(ctx, username); err != nil {
			return h.liveError(username, err)
		}
		return response.LiveState{Type: response.LiveTypeState, Payload: game.ResetPayload()}
	default:
		return h.liveError(username, apierr.NewInvalidRequestError("unknown message type"))
	}
}

func (h *LiveHandler) liveError(username string, err error) response.LiveError {
	if apierr.Status(err) >= http.StatusInternalServerError {
		h.logger.Error("live request failed",
			slog.String("username", username),
			slog.String("error", err.Error()))
	}
	desc := apierr.Describe(err)
	return response.LiveError{
		Type:  response.LiveTypeError,
		Error: desc.Message,
		Code:  desc.Code,
	}
}

// writePump owns all writes to the connection. It pings the peer so a
// silent client trips the read deadline in readPump.
func (h *LiveHandler) writePump(c *liveClient) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
