package dto

import (
	"time"

	"freelance-marketplace/internal/models"

	"github.com/google/uuid"
)

// RegisterRequest defines the structure for creating a new account.
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"` // bcrypt input limit
	Role     models.UserRole `json:"role" validate:"required,oneof=client freelancer"`
}

// LoginRequest defines the structure for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest tears down a session.
type LogoutRequest struct {
	RefreshToken string    `json:"refresh_token"`
	AccessJTI    string    `json:"-"` // Set from the authenticated token
	AccessExpiry time.Time `json:"-"`
}

// GetUserByIDRequest defines the structure for fetching a single user.
type GetUserByIDRequest struct {
	ID uuid.UUID `json:"-" validate:"required"`
}

// UpdateProfileRequest updates the caller's public profile.
type UpdateProfileRequest struct {
	Actor  models.Actor `json:"-"`
	Name   *string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Bio    *string      `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Skills []string     `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
}

// ListUsersRequest defines filters for the admin user listing.
type ListUsersRequest struct {
	Role   *models.UserRole `form:"role" validate:"omitempty,oneof=client freelancer admin"`
	Limit  int              `form:"limit,default=50" validate:"omitempty,gte=0"`
	Offset int              `form:"offset,default=0" validate:"omitempty,gte=0"`
}

// VerifyUserRequest toggles the verified flag of a user.
type VerifyUserRequest struct {
	Actor  models.Actor `json:"-"`
	UserID uuid.UUID    `json:"-" validate:"required"`
}

// DeleteUserRequest removes an account.
type DeleteUserRequest struct {
	Actor  models.Actor `json:"-"`
	UserID uuid.UUID    `json:"-" validate:"required"`
}

// UserResponse defines the user data returned to the client.
type UserResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	Verified  bool            `json:"verified"`
	Bio       string          `json:"bio"`
	Skills    []string        `json:"skills"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// ProfileResponse is the public profile of a user with their reviews.
type ProfileResponse struct {
	User               UserResponse     `json:"user"`
	Reviews            []ReviewResponse `json:"reviews"`
	AverageRating      float64          `json:"average_rating"`
	ReviewsUnavailable bool             `json:"reviews_unavailable,omitempty"`
}
