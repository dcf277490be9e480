package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/auth"
)

// APIError is the body of every API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes clients can switch on
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidMove        = "INVALID_MOVE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeConflict           = "CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError is an error that already knows its response
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

func newHTTPError(status int, code, message string) *httpError {
	return &httpError{status: status, apiError: APIError{Code: code, Message: message}}
}

// sentinels maps domain errors to responses, first match wins
var sentinels = []struct {
	target error
	resp   *httpError
}{
	{model.ErrInvalidMove, newHTTPError(http.StatusBadRequest, CodeInvalidMove, "Invalid choice")},
	{model.ErrUserNotFound, newHTTPError(http.StatusNotFound, CodeUserNotFound, "User not found")},
	{model.ErrConcurrentUpdate, newHTTPError(http.StatusConflict, CodeConflict, "Game state is busy, try again")},
	{auth.ErrUserExists, newHTTPError(http.StatusConflict, CodeUserExists, "Email or username already exists")},
	{auth.ErrInvalidCredentials, newHTTPError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")},
	{auth.ErrInvalidSession, newHTTPError(http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired session")},
	{auth.ErrMissingFields, newHTTPError(http.StatusBadRequest, CodeInvalidRequest, "email, username and password are required")},
}

var errInternal = newHTTPError(http.StatusInternalServerError, CodeInternalError, "Internal server error")

// WriteError writes the JSON envelope and status for err
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Describe returns the envelope for err without writing it
func Describe(err error) APIError {
	return toHTTPError(err).apiError
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.resp
		}
	}
	return errInternal
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return newHTTPError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return errInternal
}
