package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/clashoffists/internal/services/auth"
	"github.com/mcoot/clashoffists/internal/testutil"
)

type stubValidator map[string]*auth.Session

func (s stubValidator) ValidateSession(token string) (*auth.Session, error) {
	if session, ok := s[token]; ok {
		return session, nil
	}
	return nil, auth.ErrInvalidSession
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"header beats cookie", "Bearer abc", "xyz", "abc"},
		{"cookie", "", "xyz", "xyz"},
		{"basic is ignored", "Basic dXNlcg==", "", ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, ExtractToken(r))
		})
	}
}

func TestAuth(t *testing.T) {
	v := stubValidator{"good": {Token: "good", Username: "ann"}}
	var seen *auth.Session
	h := Auth(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MustGetSession(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, seen)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bad")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid or expired session")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer good")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	if assert.NotNil(t, seen) {
		assert.Equal(t, "ann", seen.Username)
	}
}

func TestMustGetSessionPanicsWithoutAuth(t *testing.T) {
	assert.Panics(t, func() { MustGetSession(context.Background()) })
	assert.Nil(t, GetSession(context.Background()))
}

func TestRecoverySkipsHijackedSockets(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/game", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")

	r := httptest.NewRequest(http.MethodGet, "/api/v1/game/live", nil)
	r.Header.Set("Upgrade", "websocket")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Empty(t, rr.Body.String())
}
