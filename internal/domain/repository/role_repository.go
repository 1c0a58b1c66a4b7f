package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	HasRole(ctx context.Context, db *gorm.DB, userID uuid.UUID, role string) (bool, error)
	Grant(ctx context.Context, db *gorm.DB, userID uuid.UUID, role string) error
}
