package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/clashoffists/internal/api/apierr"
)

// maxBodyBytes caps JSON request bodies; every request type here is a few short strings
const maxBodyBytes = 4 << 10

func writeError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// decodeBody reads a JSON body into v, writing a 400 and returning false on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, apierr.NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}
