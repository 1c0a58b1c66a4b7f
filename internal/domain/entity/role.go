package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserRole grants a role to a user. The booking core reads it but never writes it.
type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"type:varchar(50);primaryKey" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// RoleNames constants
const (
	RoleAdministrator = "admin"
	RoleCustomer      = "customer"
)
