package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditMetadata describes what an audited action touched and how it changed
type AuditMetadata map[string]interface{}

// AuditLog is one append-only audit trail row, written in the same transaction as the change
type AuditLog struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string        `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  AuditMetadata `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
	CreatedAt time.Time     `gorm:"autoCreateTime;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

const (
	AuditActionUserLogin          = "user.login"
	AuditActionUserRegister       = "user.register"
	AuditActionRoleGrant          = "role.grant"
	AuditActionBookingCreate      = "booking.create"
	AuditActionBookingNotesUpdate = "booking.notes_update"
)
