package middleware

import (
	"net/http"

	"github.com/mcoot/clashoffists/internal/api/response"
)

// JSONError is the error body of the page-script endpoints
type JSONError struct {
	Error string `json:"error"`
}

// WriteJSONError writes {"error": message} with status
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	response.JSON(w, status, JSONError{Error: message})
}
