package request

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PlayRequest is the request body for playing a round
type PlayRequest struct {
	Choice string `json:"choice"`
}

// Live message types sent by websocket clients
const (
	LiveTypePlay  = "play"
	LiveTypeReset = "reset"
)

// LiveMessage is one inbound websocket frame
type LiveMessage struct {
	Type   string `json:"type"`
	Choice string `json:"choice,omitempty"`
}
