package serve

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/input"
)

func newTestHandler(file string) (http.Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewHandler(input.Options{Input: file}, logger), &buf
}

func TestHandler_Elm(t *testing.T) {
	h, logs := newTestHandler("../input/testdata/api.yaml")

	req := httptest.NewRequest(http.MethodGet, "/api.elm?prefix=http://localhost:8000&module=Generated.Api&comments=none", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Generated/Api.elm", rec.Header().Get("X-Elm-Module"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	body := rec.Body.String()
	assert.Contains(t, body, "module Generated.Api exposing (..)")
	assert.Contains(t, body, `"http://localhost:8000" ++ "/" ++ "books"`)
	assert.NotContains(t, body, "{-|")

	assert.Contains(t, logs.String(), "request completed")
	assert.Contains(t, logs.String(), "path=/api.elm")
	assert.Contains(t, logs.String(), "status=200")
}

func TestHandler_Schema(t *testing.T) {
	h, _ := newTestHandler("../input/testdata/openapi.json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"path":"/books/{id}"`)
}

// brokenWriter fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestHandler_Elm_WriteError(t *testing.T) {
	h, logs := newTestHandler("../input/testdata/api.yaml")

	w := brokenWriter{httptest.NewRecorder()}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api.elm", nil))

	assert.Contains(t, logs.String(), "write module")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		target string
		method string
		status int
	}{
		{name: "bad module", file: "../input/testdata/api.yaml", target: "/api.elm?module=api", method: http.MethodGet, status: http.StatusUnprocessableEntity},
		{name: "broken input", file: "../input/testdata/broken.yaml", target: "/api.elm", method: http.MethodGet, status: http.StatusUnprocessableEntity},
		{name: "broken schema", file: "../input/testdata/broken.yaml", target: "/schema.json", method: http.MethodGet, status: http.StatusUnprocessableEntity},
		{name: "unknown path", file: "../input/testdata/api.yaml", target: "/nope", method: http.MethodGet, status: http.StatusNotFound},
		{name: "wrong method", file: "../input/testdata/api.yaml", target: "/api.elm", method: http.MethodPost, status: http.StatusMethodNotAllowed},
		{name: "preflight", file: "../input/testdata/api.yaml", target: "/api.elm", method: http.MethodOptions, status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, logs := newTestHandler(tt.file)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status >= 400 {
				assert.Contains(t, logs.String(), "request failed")
			}
		})
	}
}
