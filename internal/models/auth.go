package models

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string        `json:"user_id"`
	Role     workflow.Role `json:"role"`
	Email    string        `json:"email"`
	FullName string        `json:"full_name"`
	jwt.RegisteredClaims
}
