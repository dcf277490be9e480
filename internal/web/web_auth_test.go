package web_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRedirectsAnonymousToLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestIndexRedirectsUserToMode(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signupAndLogin("alice")

	rr := ts.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/mode", rr.Header().Get("Location"))
}

func TestSignupPage(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/signup")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form[action='/signup'] input[name='email']")
	assertContainsElement(t, doc, "form[action='/signup'] input[name='username']")
	assertContainsElement(t, doc, "form[action='/signup'] input[name='password']")
	assertContainsElement(t, doc, "a[href='/invite/qr']")
}

func TestSignup(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.signup("alice@example.com", "alice", "secret123")

	// Account created, but not logged in
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, ts.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".alert-success", "Account created! Please log in.")

	user, err := ts.app.Users.GetUserByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.False(t, user.Online)
}

func TestSignupDuplicateUsername(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.signup("other@example.com", "alice", "secret123")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/signup", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".alert-danger", "Email or username already exists")
}

func TestSignupDuplicateEmail(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.signup("alice@example.com", "alice2", "secret123")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/signup", rr.Header().Get("Location"))

	_, err := ts.app.Users.GetUserByUsername(t.Context(), "alice2")
	assert.Error(t, err, "no second account should exist")
}

func TestSignupMissingFields(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.signup("", "alice", "secret123")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/signup", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, ".alert-danger")
}

func TestLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.login("alice", "secret123")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/mode", rr.Header().Get("Location"))
	assert.True(t, ts.hasSession())

	rr = ts.followRedirect(rr)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".navbar-text", "alice")
	assertContainsElement(t, doc, "a[href='/game-ai']")
	assertContainsElement(t, doc, "a[href='/lobby']")

	user, err := ts.app.Users.GetUserByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.True(t, user.Online)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.login("alice", "wrongpassword")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, ts.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".alert-danger", "Invalid username or password")
}

func TestLoginUnknownUser(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.login("nobody", "whatever")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, ts.hasSession())
}

func TestLoginHonoursNext(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.get("/lobby")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next=%2Flobby", rr.Header().Get("Location"))

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	next, ok := doc.Find("input[name='next']").Attr("value")
	require.True(t, ok)
	assert.Equal(t, "/lobby", next)

	rr = ts.post("/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
		"next":     {next},
	})
	assert.Equal(t, "/lobby", rr.Header().Get("Location"))
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signup("alice@example.com", "alice", "secret123")

	rr := ts.post("/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
		"next":     {"//evil.example/phish"},
	})
	assert.Equal(t, "/mode", rr.Header().Get("Location"))
}

func TestAuthenticatedUserSkipsAuthPages(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signupAndLogin("alice")

	for _, path := range []string{"/login", "/signup"} {
		rr := ts.get(path)
		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "/mode", rr.Header().Get("Location"), path)
	}
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signupAndLogin("alice")

	rr := ts.get("/logout")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, ts.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".alert-info", "Logged out successfully")
	assertNotContainsElement(t, doc, ".navbar-text")

	user, err := ts.app.Users.GetUserByUsername(t.Context(), "alice")
	require.NoError(t, err)
	assert.False(t, user.Online)
}

func TestLogoutRequiresLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/logout")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login?next=")
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signupAndLogin("alice")

	ts.app.MockClock.Advance(25 * time.Hour)

	rr := ts.get("/mode")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/login")
}
