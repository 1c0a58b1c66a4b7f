package converter

import (
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Role is left empty; callers that resolved it set it themselves.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
