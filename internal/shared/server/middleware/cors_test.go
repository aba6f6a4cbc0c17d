package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.POST("/api/v1/analyze-resume", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.OPTIONS("/api/v1/analyze-resume", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestCORSWildcardAllowsAnyOrigin(t *testing.T) {
	router := corsRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", nil)
	req.Header.Set("Origin", "https://landing.example.com")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatalf("wildcard origin must not allow credentials")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := corsRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze-resume", nil)
	req.Header.Set("Origin", "https://landing.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got != "POST,GET,OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", got)
	}
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	router := corsRouter([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected explicit origin echoed, got %q", got)
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed for explicit origin")
	}
}

func TestCORSUnlistedOriginGetsNoHeaders(t *testing.T) {
	router := corsRouter([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze-resume", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unlisted origin, got %q", got)
	}
}
