package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims carries the verified identity extracted from a bearer
// token. UserID is the identity provider's stable subject id.
type TokenClaims struct {
	UserID string
}

// AuthService verifies bearer tokens issued by the external identity
// provider. Identity management itself (signup, login, sessions) lives
// outside this service.
type AuthService struct {
	jwtSecret string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{jwtSecret: jwtSecret}
}

// ValidateToken parses and verifies an HS256 token, returning the
// subject claims.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		// Older tokens carried the id under user_id.
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return nil, errors.New("token has no subject")
	}

	return &TokenClaims{UserID: userID}, nil
}
