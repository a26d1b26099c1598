package config

import (
	"testing"
	"time"
)

func TestLoadTrackerConfigDefaults(t *testing.T) {
	cfg := LoadTrackerConfig()

	if cfg.MonitorInterval != 60*time.Second {
		t.Errorf("monitor interval = %v, want 60s", cfg.MonitorInterval)
	}
	if cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("idle timeout = %v, want 30m", cfg.IdleTimeout)
	}
	if cfg.MaxSessionDuration != 24*time.Hour {
		t.Errorf("max session duration = %v, want 24h", cfg.MaxSessionDuration)
	}
	if cfg.MaxConcurrentSessions != 3 {
		t.Errorf("max concurrent sessions = %d, want 3", cfg.MaxConcurrentSessions)
	}
	if cfg.CreateRetries != 3 {
		t.Errorf("create retries = %d, want 3", cfg.CreateRetries)
	}
	if cfg.CreateRetryDelay != time.Second {
		t.Errorf("create retry delay = %v, want 1s", cfg.CreateRetryDelay)
	}
}

func TestLoadTrackerConfigEnvOverrides(t *testing.T) {
	t.Setenv("TRACKER_IDLE_TIMEOUT", "5m")
	t.Setenv("TRACKER_MAX_CONCURRENT_SESSIONS", "10")
	t.Setenv("TRACKER_MONITOR_INTERVAL", "not-a-duration")

	cfg := LoadTrackerConfig()

	if cfg.IdleTimeout != 5*time.Minute {
		t.Errorf("idle timeout = %v, want 5m", cfg.IdleTimeout)
	}
	if cfg.MaxConcurrentSessions != 10 {
		t.Errorf("max concurrent sessions = %d, want 10", cfg.MaxConcurrentSessions)
	}
	// Unparseable values fall back to the default
	if cfg.MonitorInterval != 60*time.Second {
		t.Errorf("monitor interval = %v, want default 60s", cfg.MonitorInterval)
	}
}
