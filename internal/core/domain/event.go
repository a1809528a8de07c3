package domain

import "time"

// AuthEventType names an entry in the authentication audit trail.
type AuthEventType string

const (
	EventRegister        AuthEventType = "register"
	EventLogin           AuthEventType = "login"
	EventLoginFailed     AuthEventType = "login_failed"
	EventLogout          AuthEventType = "logout"
	EventRefresh         AuthEventType = "refresh"
	EventRefreshFailed   AuthEventType = "refresh_failed"
	EventPasswordChanged AuthEventType = "password_changed"
	EventStatusChanged   AuthEventType = "status_changed"
)

// AuthEvent is an audit record of an authentication flow outcome.
type AuthEvent struct {
	Type       AuthEventType
	UserID     string // empty when the account could not be resolved
	Email      string
	Reason     string // failure cause, empty on success
	OccurredAt time.Time
}

// Key returns the value used to keep a single account's events in order.
func (e AuthEvent) Key() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.Email
}
