// internal/domain/models/visibility.go
package models

// Visibility controls who can see a piece of portfolio content.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"   // visible to everyone
	VisibilityUnlisted Visibility = "unlisted" // reachable by direct link only
	VisibilityPrivate  Visibility = "private"  // admin only
	VisibilityDraft    Visibility = "draft"    // work in progress
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDraft:
		return true
	}
	return false
}

// AvailabilityStatus is the owner's current availability for work.
type AvailabilityStatus string

const (
	AvailabilityAvailable    AvailabilityStatus = "available"
	AvailabilityBusy         AvailabilityStatus = "busy"
	AvailabilityNotAvailable AvailabilityStatus = "not-available"
)

// Valid reports whether s is a known availability status.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityNotAvailable:
		return true
	}
	return false
}

// Role is an account role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}
