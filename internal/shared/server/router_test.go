package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-scan-api/internal/shared/config"
)

func testConfig() config.Config {
	return config.Config{
		Port:            "8080",
		CORSAllowOrigin: []string{"*"},
		Env:             "dev",
		Channel:         "marketing-resume-analyzer",
		ObjectStoreType: "off",
	}
}

func TestRouterHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health body %s", resp.Body.String())
	}
}

func TestRouterMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "analysis_started_total") {
		t.Fatalf("expected counters in metrics output")
	}
}

func TestRouterPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze-resume", nil)
	req.Header.Set("Origin", "https://landing.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard CORS header")
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
