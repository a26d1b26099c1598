package dto

import (
	"time"

	"main/model"
)

type StartSessionRequest struct {
	LoginMethod string `json:"loginMethod" binding:"required"`
	IPAddress   string `json:"ipAddress,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
	DeviceInfo  string `json:"deviceInfo,omitempty"`
	Location    string `json:"location,omitempty"`
}

type StartSessionResponse struct {
	Success            bool   `json:"success"`
	SessionID          string `json:"sessionId"`
	ConcurrentSessions int    `json:"concurrentSessions"`
}

type LogEventRequest struct {
	SessionID    string                 `json:"sessionId" binding:"required"`
	EventType    string                 `json:"eventType" binding:"required"`
	EventSubtype string                 `json:"eventSubtype,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	DeviceInfo   string                 `json:"deviceInfo,omitempty"`
}

type LogEventResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
}

type EndSessionRequest struct {
	SessionID      string                `json:"sessionId" binding:"required"`
	LogoutMethod   string                `json:"logoutMethod,omitempty"`
	LogoutReason   string                `json:"logoutReason,omitempty"`
	ActivityCounts *model.ActivityCounts `json:"activityCounts,omitempty"`
}

type EndSessionResponse struct {
	Success         bool      `json:"success"`
	SessionDuration int64     `json:"sessionDuration"`
	EndTime         time.Time `json:"endTime"`
}

type LogoutResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
