package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPresenceEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	u := &User{ID: "u1", Username: "ann"}

	on := NewPresenceEvent(true, u, at)
	assert.Equal(t, Event{Type: EventUserOnline, Timestamp: at, UserID: "u1", Username: "ann"}, on)
	assert.True(t, on.Online())

	off := NewPresenceEvent(false, u, at)
	assert.Equal(t, EventUserOffline, off.Type)
	assert.False(t, off.Online())
}
