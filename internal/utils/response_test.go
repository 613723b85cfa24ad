package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	resp := ErrorResponse("Event not found", "no event with id 3")
	require.NoError(t, WriteJSON(rec, http.StatusNotFound, resp))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Event not found", body["message"])
	assert.Equal(t, "no event with id 3", body["error"])
	assert.NotContains(t, body, "data")
	assert.Contains(t, body, "timestamp")
}
