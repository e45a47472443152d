package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required"`
	Role     models.RoleType `json:"role" binding:"required,oneof=student admin"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"604800"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID         int64           `json:"id" example:"1"`
	Email      string          `json:"email" example:"student@college.edu"`
	Role       models.RoleType `json:"role" example:"student"`
	Name       string          `json:"name,omitempty" example:"Asha Rao"`
	Department string          `json:"department,omitempty" example:"Computer Science"`
	Registered bool            `json:"registered"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewUserResponse converts a user model, never exposing the password hash
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		Name:       u.Name,
		Department: u.Department,
		Registered: u.HasPassword(),
		CreatedAt:  u.CreatedAt,
	}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// StudentRegistrationRequest is the basic-info step of student registration.
// Token is the optional invitation token from the registration link.
type StudentRegistrationRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Department string `json:"department" binding:"required,department"`
	Token      string `json:"token"`
}

// RegisterAdminRequest creates another admin account
type RegisterAdminRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Name       string `json:"name" binding:"omitempty,max=100"`
	Department string `json:"department"`
}
