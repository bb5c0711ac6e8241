package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/primetrade/taskapi/internal/models"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed structure, or expiry in the past. Callers never see a
// partial identity.
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs and verifies identity tokens with a server-held
// HMAC secret. Tokens are stateless: there is no revocation list, only
// expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token embedding the user's id, email and role,
// expiring ttl from now.
func (s *TokenService) Issue(user *models.User) (string, error) {
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	//create the token using hs256 algo
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	//sign with the secret key and return
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
func (s *TokenService) Verify(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
