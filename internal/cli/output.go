package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// JSON reports whether machine-readable output was requested
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.errW, string(data))
		return
	}
	fmt.Fprintf(o.errW, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	if _, live := data.(LiveFrame); !live {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case LobbyResult:
		o.printLobby(v)
	case GamePayload:
		o.printGame(v)
	case LiveFrame:
		o.printLiveFrame(v)
	case PresenceUpdate:
		o.printPresence(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Online    bool      `json:"online"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is the login response
type AuthResult struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LobbyPlayer is one online user
type LobbyPlayer struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LobbyResult lists online users other than the caller
type LobbyResult struct {
	Count   int           `json:"count"`
	Players []LobbyPlayer `json:"players"`
}

// RoundRecord is one history entry
type RoundRecord struct {
	Round          int    `json:"round"`
	PlayerChoice   string `json:"player_choice"`
	ComputerChoice string `json:"computer_choice"`
	Result         string `json:"result"`
}

// GamePayload is the flat play/reset/state payload
type GamePayload struct {
	PlayerScore    int           `json:"player_score"`
	ComputerScore  int           `json:"computer_score"`
	Round          int           `json:"round"`
	PlayerChoice   string        `json:"player_choice"`
	ComputerChoice string        `json:"computer_choice"`
	PlayerEmoji    string        `json:"player_emoji"`
	ComputerEmoji  string        `json:"computer_emoji"`
	Result         string        `json:"result"`
	History        []RoundRecord `json:"history"`
}

// LiveFrame is one server message on the websocket stream
type LiveFrame struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	GamePayload
}

// PresenceUpdate is one lobby presence event
type PresenceUpdate struct {
	Time    time.Time `json:"time"`
	Players []string  `json:"players"`
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Opponent string `json:"opponent"`
}

func (o *Output) printUser(u User) {
	status := "offline"
	if u.Online {
		status = "online"
	}
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
	fmt.Fprintf(o.w, "Email: %s\n", u.Email)
	fmt.Fprintf(o.w, "Status: %s\n", status)
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Fprintf(o.w, "Logged in as %s (%s)\n", a.Username, a.UserID)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
	fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printLobby(l LobbyResult) {
	if len(l.Players) == 0 {
		fmt.Fprintln(o.w, "No other players online")
		return
	}
	fmt.Fprintf(o.w, "Online (%d):\n", l.Count)
	for _, p := range l.Players {
		fmt.Fprintf(o.w, "  - %s\n", p.Username)
	}
}

func (o *Output) printGame(g GamePayload) {
	fmt.Fprintf(o.w, "Round: %d\n", g.Round)
	fmt.Fprintf(o.w, "Score: you %d - %d computer\n", g.PlayerScore, g.ComputerScore)
	if g.Result != "" {
		fmt.Fprintf(o.w, "Last: %s %s vs %s %s -> %s\n",
			g.PlayerEmoji, g.PlayerChoice, g.ComputerEmoji, g.ComputerChoice, resultText(g.Result))
	}
	if len(g.History) > 0 {
		fmt.Fprintln(o.w, "History:")
		for _, h := range g.History {
			fmt.Fprintf(o.w, "  %d. %s vs %s (%s)\n", h.Round, h.PlayerChoice, h.ComputerChoice, h.Result)
		}
	}
}

func (o *Output) printLiveFrame(f LiveFrame) {
	if f.Type == "error" {
		fmt.Fprintf(o.errW, "Error: %s\n", f.Error)
		return
	}
	if f.Result == "" {
		fmt.Fprintf(o.w, "Round %d | you %d - %d computer\n", f.Round, f.PlayerScore, f.ComputerScore)
		return
	}
	fmt.Fprintf(o.w, "Round %d: %s %s vs %s %s -> %s | you %d - %d computer\n",
		f.Round, f.PlayerEmoji, f.PlayerChoice, f.ComputerEmoji, f.ComputerChoice,
		resultText(f.Result), f.PlayerScore, f.ComputerScore)
}

func (o *Output) printPresence(p PresenceUpdate) {
	timestamp := p.Time.Format("2006-01-02 15:04:05")
	if len(p.Players) == 0 {
		fmt.Fprintf(o.w, "[%s] nobody else online\n", timestamp)
		return
	}
	fmt.Fprintf(o.w, "[%s] online: %s\n", timestamp, strings.Join(p.Players, ", "))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Opponent != "" {
		fmt.Fprintf(o.w, "Opponent: %s\n", h.Opponent)
	}
}

func resultText(result string) string {
	switch result {
	case "win":
		return "you win!"
	case "lose":
		return "computer wins!"
	case "tie":
		return "it's a tie!"
	default:
		return result
	}
}
