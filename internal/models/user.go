package models

import "time"

type Role int

// UserRole constants
const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`    // Never serialize password hash
	Role         Role      `json:"role"` // 1=User, 2=Admin, default=1
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest represents a registration request payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request payload
type LoginRequest struct {
	Login    string `json:"login"` // email or username
	Password string `json:"password"`
}

// TokenResponse represents the token pair returned on login
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
