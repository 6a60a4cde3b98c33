package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleCoordinator UserRole = "coordinator"
	RoleEventHead   UserRole = "event_head"
	RoleParticipant UserRole = "participant"
)

// Valid reports whether r is one of the four known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleEventHead, RoleParticipant:
		return true
	}
	return false
}

// Departments recognised by the festival. "General" events are visible to
// every coordinator regardless of their own department.
const (
	DepartmentIT      = "IT"
	DepartmentCS      = "CS"
	DepartmentDS      = "DS"
	DepartmentGeneral = "General"
)

// User mirrors an identity-provider account into a local profile row.
// The ID is the provider's stable user id; role and department are owned
// locally and mutated only by admins (or by the user for DisplayName).
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:255"`
	DisplayName string   `json:"display_name" gorm:"not null;size:100"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PhotoURL    *string  `json:"photo_url" gorm:"size:500"`
	Role        UserRole `json:"role" gorm:"not null;default:participant;size:20;index"`
	Department  *string  `json:"department" gorm:"size:20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
