package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "localhost, .internal")

	tests := []struct {
		url  string
		want string
	}{
		{"https://api.openai.com/v1/chat", "http://secure-proxy:8443"},
		{"http://example.com/api", "http://proxy:8080"},
		{"http://localhost:11434/api/generate", ""},
		{"http://ollama.internal/api/tags", ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodGet, tt.url, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.url, err)
		}
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("proxy(%s) = %s, want direct", tt.url, got)
		case tt.want != "" && (got == nil || got.String() != tt.want):
			t.Errorf("proxy(%s) = %v, want %s", tt.url, got, tt.want)
		}
	}
}

func TestNewHTTPClientTimeout(t *testing.T) {
	if c := NewHTTPClient(0, "", "", ""); c.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", c.Timeout)
	}
	if c := NewHTTPClient(5, "", "", ""); c.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.Timeout)
	}
}
