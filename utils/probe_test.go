package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		browser   string
		os        string
		device    string
	}{
		{
			name:      "chrome on windows",
			userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser:   "Chrome",
			os:        "Windows",
			device:    "Desktop",
		},
		{
			name:      "safari on iphone",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			browser:   "Safari",
			os:        "iOS",
			device:    "iPhone",
		},
		{
			name:      "empty",
			userAgent: "",
			browser:   "Unknown Browser",
			os:        "Unknown OS",
			device:    "Desktop",
		},
		{
			name:      "garbage",
			userAgent: "definitely-not-a-browser/0.0",
			browser:   "Unknown Browser",
			os:        "Unknown OS",
			device:    "Desktop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, os, device := ParseUserAgent(tt.userAgent)
			if browser != tt.browser {
				t.Errorf("browser = %q, want %q", browser, tt.browser)
			}
			if os != tt.os {
				t.Errorf("os = %q, want %q", os, tt.os)
			}
			if device != tt.device {
				t.Errorf("device = %q, want %q", device, tt.device)
			}
		})
	}
}

func TestLocationShortCircuitsPrivateAddresses(t *testing.T) {
	probe := NewEnvProbe()
	ctx := context.Background()

	for _, ip := range []string{"127.0.0.1", "::1", "192.168.1.20", "10.0.0.5"} {
		if got := probe.Location(ctx, ip); got != "Local Network" {
			t.Errorf("Location(%q) = %q, want Local Network", ip, got)
		}
	}

	if got := probe.Location(ctx, ""); got != "Unknown Location" {
		t.Errorf("Location(\"\") = %q, want Unknown Location", got)
	}
}

func TestLocationResolvesCityAndCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"city":"Oslo","region":"Oslo","country":"Norway"}`))
	}))
	defer server.Close()

	probe := &EnvProbe{Client: server.Client(), BaseURL: server.URL}

	if got := probe.Location(context.Background(), "203.0.113.9"); got != "Oslo, Norway" {
		t.Errorf("Location = %q, want \"Oslo, Norway\"", got)
	}
}

func TestLocationToleratesLookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	probe := &EnvProbe{Client: server.Client(), BaseURL: server.URL}
	if got := probe.Location(context.Background(), "203.0.113.9"); got != "Unknown Location" {
		t.Errorf("Location on malformed response = %q, want Unknown Location", got)
	}

	// A dead endpoint falls back the same way
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	probe = &EnvProbe{Client: &http.Client{Timeout: time.Second}, BaseURL: deadURL}
	if got := probe.Location(context.Background(), "203.0.113.9"); got != "Unknown Location" {
		t.Errorf("Location on connection failure = %q, want Unknown Location", got)
	}
}

func TestGenerateSessionIDFormat(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^session_\d+_[a-zA-Z0-9]{9}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := GenerateSessionID(at)
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match expected format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
