package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Credentials represents the login request body
type Credentials struct {
	Email    string `json:"email" validate:"required,email" example:"teacher@institute.edu"`
	Password string `json:"password" validate:"required,min=1" example:"secret"`
}

// UserProfile is the profile returned by the backend on login and status checks
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// AuthSession is the authentication state of one BFF session
type AuthSession struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	CurrentUser     *UserProfile `json:"currentUser,omitempty"`
}

// SessionClaims are the claims of the signed BFF session cookie
type SessionClaims struct {
	SessionID string `json:"sid"`

	jwt.RegisteredClaims
}

// BackendCookie is a backend session cookie as kept in local client storage
type BackendCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
