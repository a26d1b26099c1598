package utils

import (
	"os"
	"strconv"
	"time"
)

// Typed environment readers backing the tracker and database config
// loaders. Every knob has a default; an unset or unparseable value
// falls back instead of failing boot.

// GetEnvAsString returns the raw value of an environment variable, or
// the default when unset.
func GetEnvAsString(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// GetEnvAsInt reads an integer knob such as TRACKER_CREATE_RETRIES.
func GetEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultVal
}

// GetEnvAsUint64 reads a pool-size knob such as MONGO_MAX_POOL_SIZE.
func GetEnvAsUint64(key string, defaultVal uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.ParseUint(value, 10, 64); err == nil {
			return result
		}
	}
	return defaultVal
}

// GetEnvAsBool reads a flag knob such as MONGO_RETRY_WRITES.
func GetEnvAsBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultVal
}

// GetEnvAsDuration reads a timing knob such as TRACKER_IDLE_TIMEOUT in
// Go duration syntax ("30m", "1h30m").
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultVal
}
