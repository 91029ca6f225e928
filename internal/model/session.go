package model

import (
	"strconv"
	"time"
)

// Role identifies who a session belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleVendor  Role = "vendor"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleVendor || r == RoleAdmin
}

// Session is the explicit identity passed into every core operation.
// Exactly one of UserID, VendorID or AdminID is set, according to Role.
type Session struct {
	ID        string    `json:"-"`
	Role      Role      `json:"role"`
	UserID    string    `json:"user_id,omitempty"`
	VendorID  int64     `json:"vendor_id,omitempty"`
	AdminID   int64     `json:"admin_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IsStudent reports whether the session belongs to a student.
func (s *Session) IsStudent() bool {
	return s != nil && s.Role == RoleStudent && s.UserID != ""
}

// IsVendor reports whether the session belongs to a vendor.
func (s *Session) IsVendor() bool {
	return s != nil && s.Role == RoleVendor && s.VendorID != 0
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// ActorID returns the identifier recorded on audit events.
func (s *Session) ActorID() string {
	switch {
	case s == nil:
		return ""
	case s.Role == RoleStudent:
		return s.UserID
	case s.Role == RoleVendor:
		return strconv.FormatInt(s.VendorID, 10)
	case s.Role == RoleAdmin:
		return strconv.FormatInt(s.AdminID, 10)
	default:
		return ""
	}
}

// Actor converts the session into an audit actor. Admin actions are recorded as system.
func (s *Session) Actor() Actor {
	switch {
	case s.IsStudent():
		return Actor{Type: ActorStudent, ID: s.UserID}
	case s.IsVendor():
		return Actor{Type: ActorVendor, ID: s.ActorID()}
	default:
		return Actor{Type: ActorSystem, ID: s.ActorID()}
	}
}
