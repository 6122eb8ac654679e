package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(origins []string, method, origin string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/appointments", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		CORSMiddleware(origins)(next).ServeHTTP(rec, req)
		return rec
	}

	t.Run("wildcard allows any origin", func(t *testing.T) {
		rec := serve([]string{"*"}, http.MethodGet, "https://app.example.com")

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("listed origin is echoed back", func(t *testing.T) {
		rec := serve([]string{"https://app.example.com"}, http.MethodGet, "https://app.example.com")

		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("unlisted origin gets no allow header", func(t *testing.T) {
		rec := serve([]string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com")

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := serve([]string{"*"}, http.MethodOptions, "https://app.example.com")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	})
}
