package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clashoffists/internal/api"
	"github.com/mcoot/clashoffists/internal/api/apierr"
	"github.com/mcoot/clashoffists/internal/api/response"
	"github.com/mcoot/clashoffists/internal/factory"
	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/game"
	"github.com/mcoot/clashoffists/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app     *factory.TestApp
	handler http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.handler = api.NewRouter(api.RouterConfig{
		Logger:       testutil.NopLogger(),
		AuthService:  s.app.AuthService,
		LobbyService: s.app.LobbyService,
		GameService:  s.app.GameService,
		CORSOrigins:  []string{"http://localhost:3000"},
	})
}

func (s *APISuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *APISuite) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *APISuite) decode(rr *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func (s *APISuite) signupAndLogin(email, username string) string {
	rr := s.request(http.MethodPost, "/api/v1/players/signup", map[string]string{
		"email": email, "username": username, "password": "secret123",
	}, "")
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": username, "password": "secret123",
	}, "")
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	s.decode(rr, &resp)
	return resp.SessionToken
}

func (s *APISuite) errorCode(rr *httptest.ResponseRecorder) string {
	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	return resp.Error.Code
}

func (s *APISuite) TestHealthCheck() {
	rr := s.request(http.MethodGet, "/api/v1/health", nil, "")
	s.Equal(http.StatusOK, rr.Code)

	var resp response.HealthResponse
	s.decode(rr, &resp)
	s.Equal("ok", resp.Status)
	s.Equal("random", resp.Opponent)
}

func (s *APISuite) TestSignup() {
	rr := s.request(http.MethodPost, "/api/v1/players/signup", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "secret123",
	}, "")
	s.Require().Equal(http.StatusCreated, rr.Code)

	var user response.User
	s.decode(rr, &user)
	s.Equal("alice", user.Username)
	s.Equal("alice@example.com", user.Email)
	s.False(user.Online)
	s.NotContains(rr.Body.String(), "password")
}

func (s *APISuite) TestSignup_Duplicate() {
	s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodPost, "/api/v1/players/signup", map[string]string{
		"email": "other@example.com", "username": "alice", "password": "x",
	}, "")
	s.Equal(http.StatusConflict, rr.Code)
	s.Equal(apierr.CodeUserExists, s.errorCode(rr))

	rr = s.request(http.MethodPost, "/api/v1/players/signup", map[string]string{
		"email": "alice@example.com", "username": "bob", "password": "x",
	}, "")
	s.Equal(http.StatusConflict, rr.Code)
}

func (s *APISuite) TestSignup_MissingFields() {
	rr := s.request(http.MethodPost, "/api/v1/players/signup", map[string]string{"username": "alice"}, "")
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidRequest, s.errorCode(rr))
}

func (s *APISuite) TestSignup_MalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/signup", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *APISuite) TestLogin_WrongPassword() {
	s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, "")
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal(apierr.CodeInvalidCredentials, s.errorCode(rr))
}

func (s *APISuite) TestMe() {
	token := s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodGet, "/api/v1/players/me", nil, token)
	s.Require().Equal(http.StatusOK, rr.Code)

	var user response.User
	s.decode(rr, &user)
	s.Equal("alice", user.Username)
	s.True(user.Online)
}

func (s *APISuite) TestProtectedRoutesRequireAuth() {
	for _, path := range []string{"/api/v1/players/me", "/api/v1/lobby", "/api/v1/game"} {
		rr := s.request(http.MethodGet, path, nil, "")
		s.Equal(http.StatusUnauthorized, rr.Code, path)
		s.Equal(apierr.CodeUnauthorized, s.errorCode(rr), path)
	}

	rr := s.request(http.MethodGet, "/api/v1/players/me", nil, "garbage")
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *APISuite) TestSessionCookieAccepted() {
	token := s.signupAndLogin("alice@example.com", "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/players/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *APISuite) TestLogout() {
	token := s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	s.Equal(http.StatusNoContent, rr.Code)

	rr = s.request(http.MethodGet, "/api/v1/players/me", nil, token)
	s.Equal(http.StatusUnauthorized, rr.Code)

	user, err := s.app.Users.GetUserByUsername(s.T().Context(), "alice")
	s.Require().NoError(err)
	s.False(user.Online)
}

func (s *APISuite) TestLobby_ListsOthersOnly() {
	alice := s.signupAndLogin("alice@example.com", "alice")
	s.signupAndLogin("bob@example.com", "bob")

	rr := s.request(http.MethodGet, "/api/v1/lobby", nil, alice)
	s.Require().Equal(http.StatusOK, rr.Code)

	var resp response.LobbyResponse
	s.decode(rr, &resp)
	s.Require().Len(resp.Players, 1)
	s.Equal(1, resp.Count)
	s.Equal("bob", resp.Players[0].Username)
}

func (s *APISuite) TestGame_InitialState() {
	token := s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodGet, "/api/v1/game", nil, token)
	s.Require().Equal(http.StatusOK, rr.Code)

	var payload game.Payload
	s.decode(rr, &payload)
	s.Equal(0, payload.Round)
	s.Equal("-", payload.PlayerChoice)
	s.Empty(payload.History)
}

func (s *APISuite) TestGame_PlayAndReset() {
	token := s.signupAndLogin("alice@example.com", "alice")
	s.app.MockRandom.QueueMoves(model.MoveScissors)

	rr := s.request(http.MethodPost, "/api/v1/game/play", map[string]string{"choice": "rock"}, token)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var payload game.Payload
	s.decode(rr, &payload)
	s.Equal(1, payload.Round)
	s.Equal(1, payload.PlayerScore)
	s.Equal(0, payload.ComputerScore)
	s.Equal("rock", payload.PlayerChoice)
	s.Equal("scissors", payload.ComputerChoice)
	s.Equal("win", payload.Result)
	s.Len(payload.History, 1)

	rr = s.request(http.MethodPost, "/api/v1/game/reset", nil, token)
	s.Require().Equal(http.StatusOK, rr.Code)

	var reset game.Payload
	s.decode(rr, &reset)
	s.Equal(0, reset.Round)
	s.Equal(0, reset.PlayerScore)
	s.Equal("-", reset.ComputerChoice)
	s.NotNil(reset.History)
	s.Empty(reset.History)
}

func (s *APISuite) TestGame_InvalidChoice() {
	token := s.signupAndLogin("alice@example.com", "alice")

	rr := s.request(http.MethodPost, "/api/v1/game/play", map[string]string{"choice": "lizard"}, token)
	s.Equal(http.StatusBadRequest, rr.Code)

	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	s.Equal(apierr.CodeInvalidMove, resp.Error.Code)
	s.Equal("Invalid choice", resp.Error.Message)
}

func (s *APISuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/game/play", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	s.Equal("http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func (s *APISuite) TestLive_PlayResetAndErrors() {
	token := s.signupAndLogin("alice@example.com", "alice")
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/game/live"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err)
	defer resp.Body.Close()
	defer conn.Close()

	var initial map[string]any
	s.Require().NoError(conn.ReadJSON(&initial))
	s.Equal(response.LiveTypeState, initial["type"])
	s.EqualValues(0, initial["round"])

	s.app.MockRandom.QueueMoves(model.MovePaper)
	s.Require().NoError(conn.WriteJSON(map[string]string{"type": "play", "choice": "scissors"}))
	var played map[string]any
	s.Require().NoError(conn.ReadJSON(&played))
	s.Equal(response.LiveTypeState, played["type"])
	s.Equal("win", played["result"])
	s.EqualValues(1, played["round"])

	s.Require().NoError(conn.WriteJSON(map[string]string{"type": "play", "choice": "spock"}))
	var rejected response.LiveError
	s.Require().NoError(conn.ReadJSON(&rejected))
	s.Equal(response.LiveTypeError, rejected.Type)
	s.Equal("Invalid choice", rejected.Error)

	s.Require().NoError(conn.WriteJSON(map[string]string{"type": "reset"}))
	var reset map[string]any
	s.Require().NoError(conn.ReadJSON(&reset))
	s.EqualValues(0, reset["round"])
}

func (s *APISuite) TestLive_RequiresAuth() {
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/game/live"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
