package model

import "testing"

func TestValidEventType(t *testing.T) {
	for _, valid := range []string{"login", "logout", "page_view", "api_call", "user_action", "security_check", "idle", "error"} {
		if !ValidEventType(valid) {
			t.Errorf("ValidEventType(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "pageview", "PAGE_VIEW", "telepathy"} {
		if ValidEventType(invalid) {
			t.Errorf("ValidEventType(%q) = true, want false", invalid)
		}
	}
}

func TestSessionOpen(t *testing.T) {
	tests := []struct {
		status SessionStatus
		open   bool
	}{
		{StatusActive, true},
		{StatusIdle, true},
		{StatusTerminated, false},
		{StatusExpired, false},
	}
	for _, tt := range tests {
		s := &Session{Status: tt.status}
		if got := s.Open(); got != tt.open {
			t.Errorf("Open() with status %q = %v, want %v", tt.status, got, tt.open)
		}
	}
}
