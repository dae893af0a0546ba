package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/common"
)

func TestParseAllowedOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		allowed []string
		wantErr bool
	}{
		{
			name:    "empty string",
			input:   "",
			allowed: []string{},
		},
		{
			name:    "single valid origin",
			input:   "http://localhost:3000",
			allowed: []string{"http://localhost:3000"},
		},
		{
			name:    "multiple origins with whitespace",
			input:   " http://localhost:3000 , https://example.com ",
			allowed: []string{"http://localhost:3000", "https://example.com"},
		},
		{
			name:    "missing scheme",
			input:   "localhost:3000",
			wantErr: true,
		},
		{
			name:    "origin with path",
			input:   "http://localhost:3000/api",
			wantErr: true,
		},
		{
			name:    "origin with query",
			input:   "http://localhost:3000?foo=bar",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAllowedOrigins(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, origin := range tt.allowed {
				assert.True(t, got.IsAllowed(origin), "expected %s to be allowed", origin)
			}
			assert.False(t, got.IsAllowed("http://evil.example.com"))
		})
	}
}

func TestAllowedOriginsEmptyOrigin(t *testing.T) {
	t.Parallel()
	origins, err := ParseAllowedOrigins("http://localhost:3000")
	require.NoError(t, err)
	assert.True(t, origins.IsAllowed(""))
}

func TestBuildDefaultAllowedOrigins(t *testing.T) {
	origins := BuildDefaultAllowedOrigins()
	port := common.GetServerPort()
	assert.True(t, origins.IsAllowed(fmt.Sprintf("http://localhost:%d", port)))
	assert.True(t, origins.IsAllowed(fmt.Sprintf("http://127.0.0.1:%d", port)))
	assert.False(t, origins.IsAllowed("http://localhost:5173"))

	t.Setenv("ORDERDESK_APP_ENV", "development")
	origins = BuildDefaultAllowedOrigins()
	assert.True(t, origins.IsAllowed("http://localhost:5173"))
}

func TestGetAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("ORDERDESK_ALLOWED_ORIGINS", "https://dashboard.example.com")
	origins, err := GetAllowedOrigins()
	require.NoError(t, err)
	assert.True(t, origins.IsAllowed("https://dashboard.example.com"))
	assert.False(t, origins.IsAllowed("http://localhost:5173"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	origins, err := ParseAllowedOrigins("http://localhost:3000")
	require.NoError(t, err)

	router := gin.New()
	router.Use(CORSMiddleware(origins))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no origin header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
