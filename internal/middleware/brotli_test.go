package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brotliRouter(body string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	h := func(c *gin.Context) { c.String(http.StatusOK, body) }
	r.GET("/api/v1/courses", h)
	r.GET("/api/v1/courses/:id/gradebook/export", h)
	return r
}

func get(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	body := strings.Repeat(`{"title":"Forklift Safety"},`, 200)
	w := get(brotliRouter(body), "/api/v1/courses", map[string]string{"Accept-Encoding": "gzip, br"})

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestBrotliPassThrough(t *testing.T) {
	large := strings.Repeat("x", 4096)

	tests := []struct {
		name    string
		body    string
		path    string
		headers map[string]string
	}{
		{"small body", "ok", "/api/v1/courses", map[string]string{"Accept-Encoding": "br"}},
		{"client without br", large, "/api/v1/courses", map[string]string{"Accept-Encoding": "gzip"}},
		{"spreadsheet export", large, "/api/v1/courses/1/gradebook/export", map[string]string{"Accept-Encoding": "br"}},
		{"event stream", large, "/api/v1/courses", map[string]string{"Accept-Encoding": "br", "Accept": "text/event-stream"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(brotliRouter(tt.body), tt.path, tt.headers)
			assert.Empty(t, w.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}
