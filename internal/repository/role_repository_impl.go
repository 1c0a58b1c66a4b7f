package repository

import (
	"context"

	"massage-booking/internal/domain/entity"
	domainRepo "massage-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roleRepository struct{}

func NewRoleRepository() domainRepo.RoleRepository {
	return &roleRepository{}
}

func (r *roleRepository) HasRole(ctx context.Context, db *gorm.DB, userID uuid.UUID, role string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant is idempotent: granting an existing role is a no-op.
func (r *roleRepository) Grant(ctx context.Context, db *gorm.DB, userID uuid.UUID, role string) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserRole{UserID: userID, Role: role}).Error
}
