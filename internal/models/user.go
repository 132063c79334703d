package models

import "time"

// Role identifies the clearance tier of a municipal agent.
type Role string

const (
	RoleMaire          Role = "MAIRE"
	RoleSecretaire     Role = "SECRETAIRE"
	RoleAdministrateur Role = "ADMINISTRATEUR"
)

// Roles lists every role the register recognises.
var Roles = []Role{RoleMaire, RoleSecretaire, RoleAdministrateur}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleMaire, RoleSecretaire, RoleAdministrateur:
		return true
	}
	return false
}

// User is a municipal agent. Records are seeded at startup and immutable;
// the active user is a session-scoped selection, never owned by a document.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Role      Role      `gorm:"size:32;not null" json:"role"`
	Avatar    string    `gorm:"size:512" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
