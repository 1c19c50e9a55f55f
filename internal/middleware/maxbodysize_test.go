package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/visa-tracker/internal/middleware"
)

const bodyLimit = 100

// readAll answers 413 when reading the body fails, as http.MaxBytesReader
// makes it do past the limit.
var readAll = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, err := io.ReadAll(r.Body); err != nil {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func TestMaxBodySizeHandler(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		contentLength int64 // -1 streams the body without a declared length
		want          int
	}{
		{"under limit", 50, 50, http.StatusOK},
		{"at limit", bodyLimit, bodyLimit, http.StatusOK},
		{"streamed over limit", 2 * bodyLimit, -1, http.StatusRequestEntityTooLarge},
		{"streamed under limit", 10, -1, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := middleware.NewMaxBodySizeHandler(bodyLimit)(readAll)

			req := httptest.NewRequest(http.MethodPost, "/travelers/x/stays", strings.NewReader(strings.Repeat("x", tt.size)))
			req.ContentLength = tt.contentLength
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

// A declared Content-Length over the limit is refused before the handler runs.
func TestMaxBodySizeHandler_declaredLengthRejectedEarly(t *testing.T) {
	reached := false
	h := middleware.NewMaxBodySizeHandler(bodyLimit)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/travelers", strings.NewReader(strings.Repeat("x", 2*bodyLimit)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, reached)

	var body struct {
		Error struct{ Code string } `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "request_too_large", body.Error.Code)
}
