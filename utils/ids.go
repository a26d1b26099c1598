package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID builds a session id of the form
// session_<unix-millis>_<9 alphanumeric chars>. It never fails: the
// caller must always receive a usable id even when nothing else works.
func GenerateSessionID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", at.UnixMilli(), suffix)
}

// GenerateEventID returns a unique id for an event or alert row.
func GenerateEventID() string {
	return uuid.NewString()
}

// GenerateUserID returns a unique id for a new user.
func GenerateUserID() string {
	return uuid.NewString()
}
