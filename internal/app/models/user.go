package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table.
// Records are owned by the sign-in and profile flows; reporting only reads them.
// Role is fixed at creation.
type User struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Role RoleType  `json:"role" db:"role"`

	// Self-reported profile fields
	StudentName  string `json:"studentName" db:"student_name"`
	StudentID    string `json:"studentId" db:"student_id"`
	MobileNumber string `json:"mobileNumber" db:"mobile_number"`

	// Populated by the identity provider, nullable
	ExternalAuthEmail       *string `json:"externalAuthEmail,omitempty" db:"external_auth_email"`
	ExternalAuthDisplayName *string `json:"externalAuthDisplayName,omitempty" db:"external_auth_display_name"`

	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
