package model

import "time"

// Role is the closed set of roles a user may hold. Unknown values are
// rejected at the store boundary, never downstream.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User represents an account record as stored in the `users` table.
// The id is an opaque UUID string assigned once at signup and never
// changed afterwards. Username, email and phone number are optional
// individually, but at least one must be present so the account can
// be addressed at login.
//
// Fields:
//  ID           – users.id, immutable UUID.
//  Name         – users.name.
//  Surname      – users.surname.
//  Username     – users.username, unique login identifier.
//  PasswordHash – users.password_hash, bcrypt digest.
//  PhoneNumber  – users.phone_number, unique login identifier.
//  Email        – users.email, unique login identifier.
//  Role         – users.role, one of user/admin/moderator.
//  Group        – users.group, free-form partition used to scope moderators.
//  AvatarURL    – users.s3_file_path, optional profile image location.
//  IsBlocked    – users.is_blocked.
//  CreatedAt    – users.created_at.
//  ModifiedAt   – users.modified_at.
type User struct {
	ID           string
	Name         string
	Surname      string
	Username     string
	PasswordHash string
	PhoneNumber  string
	Email        string
	Role         Role
	Group        string
	AvatarURL    string
	IsBlocked    bool
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// ResetNotification is an audit row in `reset_password_messages`,
// written after a password was changed through the reset flow. It is
// purely observational and never read back by the service.
type ResetNotification struct {
	ID           string
	UserID       string
	EmailAddress string
	Subject      string
	Body         string
	PublishedAt  time.Time
	SentAt       time.Time
}
