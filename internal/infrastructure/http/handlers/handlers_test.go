package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr with port", "10.0.0.1:54321", "", "10.0.0.1"},
		{"xff single", "10.0.0.1:54321", "203.0.113.7", "203.0.113.7"},
		{"xff chain takes first", "10.0.0.1:54321", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
		{"ipv6 without port kept whole", "[::1]", "", "[::1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRetry(t *testing.T) {
	if got := formatRetry(277); got != "4m 37s" {
		t.Errorf("formatRetry(277) = %q, want \"4m 37s\"", got)
	}
	if got := formatRetry(59); got != "0m 59s" {
		t.Errorf("formatRetry(59) = %q, want \"0m 59s\"", got)
	}
	if got := formatRetry(900); got != "15m 0s" {
		t.Errorf("formatRetry(900) = %q, want \"15m 0s\"", got)
	}
}

func TestWriteErrDefaultCodes(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusTooManyRequests, ErrCodeAccountLocked},
		{http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeErr(rec, tt.status, "", "boom")
		if rec.Code != tt.status {
			t.Errorf("status = %d, want %d", rec.Code, tt.status)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		if body["code"] != tt.code {
			t.Errorf("code for %d = %q, want %q", tt.status, body["code"], tt.code)
		}
		if body["error"] != "boom" {
			t.Errorf("error = %q, want %q", body["error"], "boom")
		}
	}
}

func TestSanitizePassword(t *testing.T) {
	if got := SanitizePassword("  Secret123  "); got != "Secret123" {
		t.Errorf("SanitizePassword trim = %q", got)
	}
	long := make([]byte, MaxPasswordLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizePassword(string(long)); got != "" {
		t.Errorf("oversized password should sanitize to empty, got %d chars", len(got))
	}
}
