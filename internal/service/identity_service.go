package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/config"
)

// Role is the caller's role as asserted by the identity provider.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Claims extends JWT standard claims with app-specific fields. Tokens are
// issued by an external identity provider sharing our HS256 secret; this
// service only validates them. GenerateToken exists for the seed tool and
// tests.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// IdentityService validates the per-request identity tokens the core relies on.
type IdentityService struct {
	cfg *config.Config
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(cfg *config.Config) *IdentityService {
	return &IdentityService{cfg: cfg}
}

// GenerateToken mints a signed token for the given user. Not exposed over
// HTTP; used by cmd/seed to print a demo credential and by tests.
func (s *IdentityService) GenerateToken(userID uuid.UUID, role Role) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *IdentityService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
