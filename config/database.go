package config

import (
	"time"

	"main/utils"
)

type DatabaseConfig struct {
	URI               string
	DatabaseName      string
	SessionCollection string
	EventCollection   string
	AlertCollection   string
	UserCollection    string
	MaxPoolSize       uint64
	MinPoolSize       uint64
	MaxConnIdleTime   time.Duration
	RetryWrites       bool
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:               utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:      utils.GetEnvAsString("MONGO_DB", "sessiontrack"),
		SessionCollection: utils.GetEnvAsString("SESSIONS_COLLECTION", "user_sessions"),
		EventCollection:   utils.GetEnvAsString("EVENTS_COLLECTION", "session_events"),
		AlertCollection:   utils.GetEnvAsString("ALERTS_COLLECTION", "security_alerts"),
		UserCollection:    utils.GetEnvAsString("USERS_COLLECTION", "users"),
		MaxPoolSize:       utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:       utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime:   time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		RetryWrites:       utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
	}
}
