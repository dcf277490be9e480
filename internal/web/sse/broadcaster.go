package sse

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/web/templates/components"
)

// PresenceEvent is the SSE event name carrying the online list
const PresenceEvent = "presence-update"

// OnlineLister lists online users, excluding excludeID when non-empty
type OnlineLister interface {
	OnlinePlayers(ctx context.Context, excludeID string) ([]*model.User, error)
}

// Broadcaster re-renders the online list and pushes it to lobby viewers
type Broadcaster struct {
	hub    *Hub
	lobby  OnlineLister
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, lobby OnlineLister, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		lobby:  lobby,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// PresenceChanged pushes a fresh online list to every lobby viewer, leaving each viewer out of their own copy
func (b *Broadcaster) PresenceChanged(event model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, err := b.lobby.OnlinePlayers(ctx, "")
	if err != nil {
		b.logger.Error("sse failed to list online users",
			slog.String("user_id", event.UserID),
			slog.Any("error", err))
		return
	}

	b.hub.Send(func(viewerID string) []byte {
		msg, err := presenceMessage(context.Background(), without(users, viewerID))
		if err != nil {
			b.logger.Error("sse failed to render online list", slog.Any("error", err))
			return nil
		}
		return msg
	})
}

// RenderOnlineList renders online users other than excludeID
func (b *Broadcaster) RenderOnlineList(ctx context.Context, excludeID string) (string, error) {
	users, err := b.lobby.OnlinePlayers(ctx, excludeID)
	if err != nil {
		return "", err
	}
	return renderList(ctx, users)
}

// InitialMessage is the first presence event sent to a new viewer
func (b *Broadcaster) InitialMessage(ctx context.Context, viewerID string) ([]byte, error) {
	users, err := b.lobby.OnlinePlayers(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return presenceMessage(ctx, users)
}

func presenceMessage(ctx context.Context, users []*model.User) ([]byte, error) {
	html, err := renderList(ctx, users)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(PresenceEvent, html), nil
}

func renderList(ctx context.Context, users []*model.User) (string, error) {
	var buf bytes.Buffer
	if err := components.OnlineList(users).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func without(users []*model.User, id string) []*model.User {
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
