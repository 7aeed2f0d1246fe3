// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/portfolio/internal/app/store/audit"
)

// listItem is one audit event as returned by GET /audit.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorName     string            `json:"actorName,omitempty"`  // resolved from ActorID
	TargetID      string            `json:"userId,omitempty"`
	TargetName    string            `json:"userName,omitempty"` // resolved from UserID
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// categoryOption describes a category and the event types recorded in it.
type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"eventTypes"`
}

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventPasswordChanged,
		audit.EventPasswordResetRequested,
		audit.EventPasswordResetCompleted,
	}

	adminEvents = []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventAboutCreated,
		audit.EventAboutUpdated,
		audit.EventAboutDeleted,
		audit.EventAboutMediaUpdated,
		audit.EventContactUpdated,
		audit.EventContactDeleted,
	}
)

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: authEvents},
		{Value: audit.CategoryAdmin, Label: "Administration", EventTypes: adminEvents},
	}
}

// validCategory reports whether c is empty or a known category.
func validCategory(c string) bool {
	switch c {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
		return true
	}
	return false
}
