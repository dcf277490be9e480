package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/clashoffists/internal/factory"
	"github.com/mcoot/clashoffists/internal/testutil"
	"github.com/mcoot/clashoffists/internal/web"
)

const siteURL = "http://clash.example"

var site, _ = url.Parse(siteURL)

// webTestServer is one browser session against the in-process web router
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	jar     http.CookieJar
}

func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := web.NewRouter(web.RouterConfig{
		Logger:       testutil.NopLogger(),
		AuthService:  app.AuthService,
		LobbyService: app.LobbyService,
		GameService:  app.GameService,
		PresenceHub:  app.PresenceHub,
		Presence:     app.Presence,
		BaseURL:      siteURL,
	})

	ts := &webTestServer{t: t, handler: router, app: app}
	ts.jar = newJar(t)
	return ts
}

func newJar(t *testing.T) http.CookieJar {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

// newBrowser opens a second browser on the same app, starting logged out
func (ts *webTestServer) newBrowser() *webTestServer {
	return &webTestServer{t: ts.t, handler: ts.handler, app: ts.app, jar: newJar(ts.t)}
}

func (ts *webTestServer) attachCookies(req *http.Request) {
	for _, c := range ts.jar.Cookies(site) {
		req.AddCookie(c)
	}
}

func (ts *webTestServer) setCookie(c *http.Cookie) {
	ts.jar.SetCookies(site, []*http.Cookie{c})
}

func (ts *webTestServer) hasSession() bool {
	for _, c := range ts.jar.Cookies(site) {
		if c.Name == "session" {
			return true
		}
	}
	return false
}

func (ts *webTestServer) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	ts.attachCookies(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	ts.storeCookies(rr.Result().Cookies())
	return rr
}

// storeCookies keeps response cookies. Expires is stamped from the mock clock,
// which the jar cannot see, so it is dropped and only MaxAge is honoured.
func (ts *webTestServer) storeCookies(cookies []*http.Cookie) {
	for _, c := range cookies {
		c.Expires = time.Time{}
	}
	ts.jar.SetCookies(site, cookies)
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, "")
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// postJSON posts the way app.js does
func (ts *webTestServer) postJSON(path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = strings.NewReader(string(b))
	}
	return ts.request(http.MethodPost, path, reader, "application/json")
}

func (ts *webTestServer) signup(email, username, password string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.post("/signup", url.Values{
		"email":    {email},
		"username": {username},
		"password": {password},
	})
}

func (ts *webTestServer) login(username, password string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.post("/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

// signupAndLogin leaves the browser holding a session cookie for username
func (ts *webTestServer) signupAndLogin(username string) {
	ts.t.Helper()
	rr := ts.signup(username+"@example.com", username, "secret123")
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "signup should redirect")
	require.Equal(ts.t, "/login", rr.Header().Get("Location"))

	rr = ts.login(username, "secret123")
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "login should redirect")
	require.True(ts.t, ts.hasSession(), "login should set the session cookie")
}

func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "response is not a redirect")
	return ts.get(location)
}

func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("no element matches %q", selector)
	}
}

func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if n := doc.Find(selector).Length(); n > 0 {
		t.Errorf("%d elements match %q, want none", n, selector)
	}
}

func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("no element matches %q", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("%q has text %q, want it to contain %q", selector, el.Text(), text)
	}
}

// newJSONRequest builds a cookieless JSON post
func newJSONRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
