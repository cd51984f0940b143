package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyCreate_InvalidJSON(t *testing.T) {
	h := NewAPIKey(nil)

	req := newRequestRaw(http.MethodPost, "/api-keys", `{bad json`)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid JSON")
}

func TestAPIKeyCreate_MissingName(t *testing.T) {
	h := NewAPIKey(nil)

	req := newRequest(http.MethodPost, "/api-keys", map[string]any{
		"scopes": []string{"*:*"},
	})
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestAPIKeyGet_MissingID(t *testing.T) {
	h := NewAPIKey(nil)

	req := withChiURLParam(newRequestRaw(http.MethodGet, "/api-keys/", ""), "id", "")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
