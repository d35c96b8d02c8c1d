package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

// IsStaff reports whether the role may triage tickets.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTechnician || r == RoleAdmin
}

// User is an account in the helpdesk: requester, technician or admin.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	FirstName    string
	LastName     string
	Active       bool
	CreatedAt    time.Time
}

// FullName joins the optional name fields for display.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
