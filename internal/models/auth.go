package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PrincipalKind distinguishes staff sessions from donor sessions.
type PrincipalKind string

const (
	PrincipalAdmin PrincipalKind = "admin"
	PrincipalDonor PrincipalKind = "donor"
)

// LoginRequest holds credentials. Identifier is an admin username or a donor login id.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and the authenticated principal.
type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int64         `json:"expiresIn"`
	Kind        PrincipalKind `json:"kind"`
	Admin       *AdminUser    `json:"admin,omitempty"`
	Donor       *Donor        `json:"donor,omitempty"`
	IssuedAt    time.Time     `json:"issuedAt"`
}

// ChangePasswordRequest rotates the caller's own credential.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Kind     PrincipalKind `json:"kind"`
	Role     AdminRole     `json:"role,omitempty"`
	Username string        `json:"username"`
	jwt.RegisteredClaims
}

// PrincipalID returns the subject of the token.
func (c *JWTClaims) PrincipalID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
