package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried inside a signed token.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	//has standard jwt fields: expiry, issued at etc
	jwt.RegisteredClaims
}
