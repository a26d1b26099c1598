package config

import (
	"time"

	"main/utils"
)

// TrackerConfig holds the timing and threshold knobs of the session
// tracker. Every value has a default; the environment only overrides.
type TrackerConfig struct {
	MonitorInterval       time.Duration
	IdleTimeout           time.Duration
	MaxSessionDuration    time.Duration
	MaxConcurrentSessions int
	CreateRetries         int
	CreateRetryDelay      time.Duration
	ActivityQueueSize     int
}

func LoadTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MonitorInterval:       utils.GetEnvAsDuration("TRACKER_MONITOR_INTERVAL", 60*time.Second),
		IdleTimeout:           utils.GetEnvAsDuration("TRACKER_IDLE_TIMEOUT", 30*time.Minute),
		MaxSessionDuration:    utils.GetEnvAsDuration("TRACKER_MAX_SESSION_DURATION", 24*time.Hour),
		MaxConcurrentSessions: utils.GetEnvAsInt("TRACKER_MAX_CONCURRENT_SESSIONS", 3),
		CreateRetries:         utils.GetEnvAsInt("TRACKER_CREATE_RETRIES", 3),
		CreateRetryDelay:      utils.GetEnvAsDuration("TRACKER_CREATE_RETRY_DELAY", time.Second),
		ActivityQueueSize:     utils.GetEnvAsInt("TRACKER_ACTIVITY_QUEUE_SIZE", 64),
	}
}
