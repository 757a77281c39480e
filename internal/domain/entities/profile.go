package entities

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRole defines application roles
type ProfileRole string

const (
	RoleManager             ProfileRole = "manager"
	RoleSalesRepresentative ProfileRole = "sales_representative"
)

// IsValid checks if the profile role is valid
func (r ProfileRole) IsValid() bool {
	return r == RoleManager || r == RoleSalesRepresentative
}

// Profile is the application user record. Its ID equals the auth identity id.
// A sales representative carries a ManagerID; billing and credits always
// attribute to the manager.
type Profile struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	Role        ProfileRole `json:"role" gorm:"type:varchar(50);not null;default:'manager'"`
	ManagerID   *uuid.UUID  `json:"manager_id,omitempty" gorm:"type:uuid;index"`
	Name        string      `json:"name" gorm:"type:varchar(255);not null"`
	Email       string      `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CompanyName string      `json:"company_name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// BillingOwnerID returns the profile whose wallet and subscription this
// profile's usage attributes to: the manager for a rep, itself for a manager.
func (p *Profile) BillingOwnerID() uuid.UUID {
	if p.Role == RoleSalesRepresentative && p.ManagerID != nil {
		return *p.ManagerID
	}
	return p.ID
}

// Validate validates profile data
func (p *Profile) Validate() error {
	if p.Email == "" {
		return ErrInvalidEmail
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if !p.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}
