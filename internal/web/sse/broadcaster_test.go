package sse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/testutil"
)

type fakeLister struct {
	users []*model.User
	err   error
}

func (f *fakeLister) OnlinePlayers(_ context.Context, excludeID string) ([]*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.User
	for _, u := range f.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func TestBroadcaster_PresenceChanged(t *testing.T) {
	hub := newTestHub(t)
	lister := &fakeLister{users: []*model.User{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}}
	b := NewBroadcaster(hub, lister, testutil.NopLogger())

	client := NewClient(hub, "u1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	b.PresenceChanged(model.Event{Type: model.EventUserOnline, UserID: "u2"})

	select {
	case msg := <-client.send:
		msgStr := string(msg)
		if !strings.Contains(msgStr, "event: presence-update") {
			t.Errorf("message does not contain event name: %s", msgStr)
		}
		if strings.Contains(msgStr, "alice") {
			t.Errorf("viewer u1 should not see themselves: %s", msgStr)
		}
		if !strings.Contains(msgStr, `data-user-id="u2"`) || !strings.Contains(msgStr, "bob") {
			t.Errorf("message missing bob: %s", msgStr)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestBroadcaster_RenderErrorSkipsBroadcast(t *testing.T) {
	hub := newTestHub(t)
	b := NewBroadcaster(hub, &fakeLister{err: errors.New("db down")}, testutil.NopLogger())

	client := NewClient(hub, "u1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	b.PresenceChanged(model.Event{Type: model.EventUserOffline})

	select {
	case msg := <-client.send:
		t.Errorf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_InitialMessageExcludesViewer(t *testing.T) {
	hub := newTestHub(t)
	lister := &fakeLister{users: []*model.User{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
	}}
	b := NewBroadcaster(hub, lister, testutil.NopLogger())

	msg, err := b.InitialMessage(context.Background(), "u1")
	if err != nil {
		t.Fatalf("InitialMessage() error = %v", err)
	}
	msgStr := string(msg)
	if strings.Contains(msgStr, "alice") {
		t.Errorf("initial message should not list the viewer: %s", msgStr)
	}
	if !strings.Contains(msgStr, "bob") {
		t.Errorf("initial message should list bob: %s", msgStr)
	}
}

func TestBroadcaster_EmptyList(t *testing.T) {
	hub := newTestHub(t)
	b := NewBroadcaster(hub, &fakeLister{}, testutil.NopLogger())

	html, err := b.RenderOnlineList(context.Background(), "")
	if err != nil {
		t.Fatalf("RenderOnlineList() error = %v", err)
	}
	if !strings.Contains(html, "No other players online") {
		t.Errorf("expected empty placeholder, got %s", html)
	}
}
