package dto

import (
	"time"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

// CreateUserRequest is the admin payload for creating an account with any role.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// UserResponse is the public view of a user. It never carries the credential.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// NewUserSummary converts a user into the compact shape used by login, register and create.
func NewUserSummary(user models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// NewUserResponse includes the creation timestamp, as used by the user listing.
func NewUserResponse(user models.User) UserResponse {
	response := NewUserSummary(user)
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt
		response.CreatedAt = &created
	}
	return response
}

// NewUserResponseSlice converts a slice of users.
func NewUserResponseSlice(users []models.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, NewUserResponse(user))
	}
	return result
}
