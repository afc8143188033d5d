package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDefaultCSPConfig(t *testing.T) {
	header := DefaultCSPConfig().BuildCSPHeader()
	for _, want := range []string{"default-src 'self'", "frame-ancestors 'none'", "connect-src 'self'"} {
		if !strings.Contains(header, want) {
			t.Errorf("default CSP %q missing %q", header, want)
		}
	}
	if strings.Contains(header, "upgrade-insecure-requests") {
		t.Error("default CSP should not upgrade insecure requests")
	}
}

func TestWebUICSPConfig(t *testing.T) {
	if strings.Contains(WebUICSPConfig(false).BuildCSPHeader(), "upgrade-insecure-requests") {
		t.Error("plain HTTP web CSP should not upgrade requests")
	}
	if !strings.Contains(WebUICSPConfig(true).BuildCSPHeader(), "upgrade-insecure-requests") {
		t.Error("HTTPS web CSP should upgrade requests")
	}
}

func TestAPICSPConfig(t *testing.T) {
	header := APICSPConfig().BuildCSPHeader()
	if header != "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'" {
		t.Errorf("API CSP = %q", header)
	}
}

func TestBuildCSPHeader(t *testing.T) {
	tests := []struct {
		name     string
		cfg      CSPConfig
		expected string
	}{
		{
			name:     "empty config",
			cfg:      CSPConfig{},
			expected: "",
		},
		{
			name: "upgrade insecure requests",
			cfg: CSPConfig{
				DefaultSrc:              []string{"'self'"},
				UpgradeInsecureRequests: true,
			},
			expected: "default-src 'self'; upgrade-insecure-requests",
		},
		{
			name: "multiple sources",
			cfg: CSPConfig{
				DefaultSrc: []string{"'self'"},
				ImgSrc:     []string{"'self'", "data:", "https://example.com"},
			},
			expected: "default-src 'self'; img-src 'self' data: https://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.cfg.BuildCSPHeader()
			if result != tt.expected {
				t.Errorf("Expected CSP header:\n%s\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestSecurityHeadersWithCSP(t *testing.T) {
	handler := SecurityHeadersWithCSP(WebUICSPConfig(false), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/search?q=gita", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	headers := []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"X-XSS-Protection",
		"Referrer-Policy",
		"Content-Security-Policy",
	}
	for _, header := range headers {
		if w.Header().Get(header) == "" {
			t.Errorf("Expected header '%s' to be set", header)
		}
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options should be DENY")
	}
}
