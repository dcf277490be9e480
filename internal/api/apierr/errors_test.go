package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/clashoffists/internal/model"
	"github.com/mcoot/clashoffists/internal/services/auth"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrInvalidMove, http.StatusBadRequest, CodeInvalidMove},
		{fmt.Errorf("wrapped: %w", model.ErrInvalidMove), http.StatusBadRequest, CodeInvalidMove},
		{auth.ErrUserExists, http.StatusConflict, CodeUserExists},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{auth.ErrMissingFields, http.StatusBadRequest, CodeInvalidRequest},
		{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
		{model.ErrConcurrentUpdate, http.StatusConflict, CodeConflict},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{NewUnauthorizedError(), http.StatusUnauthorized, CodeUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(model.ErrInvalidMove)
	assert.Equal(t, APIError{Code: CodeInvalidMove, Message: "Invalid choice"}, got)
	assert.Equal(t, http.StatusBadRequest, Status(model.ErrInvalidMove))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
}
