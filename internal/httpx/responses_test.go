package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSONSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]any{"total": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "value", response.Data["key"])
	assert.Equal(t, "req-1", response.Meta["request_id"])
	assert.EqualValues(t, 10, response.Meta["total"])
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	details := []ErrorDetail{{Field: "email", Message: "email is required"}}

	JSONError(w, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Success)
	assert.Equal(t, "VALIDATION_ERROR", response.Error.Code)
	assert.Equal(t, "Invalid input", response.Error.Message)
	assert.Equal(t, details, response.Error.Details)
	assert.Nil(t, response.Meta)
}

func TestJSON_WritesDocumentAsIs(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"access_token": "t", "token_type": "bearer"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"access_token":"t","token_type":"bearer"}`, w.Body.String())
}
