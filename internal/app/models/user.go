package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	Email      string    `json:"email" db:"email" example:"student@college.edu"`
	Password   *string   `json:"-" db:"password"` // nil until an invited student submits basic info
	Role       RoleType  `json:"role" db:"role" example:"student"`
	Name       string    `json:"name" db:"name" example:"Asha Rao"`
	Department string    `json:"department" db:"department" example:"Computer Science"` // authoritative for visibility
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether basic info has been submitted
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// PasswordHash returns the stored hash or an empty string
func (u *User) PasswordHash() string {
	if u.Password == nil {
		return ""
	}
	return *u.Password
}
