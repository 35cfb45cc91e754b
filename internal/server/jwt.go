package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/jonathan/jobboard/internal/types"
)

// Claims represents JWT claims naming a user by role and id. The registered
// jti claim identifies the token for revocation.
type Claims struct {
	Role   types.Role `json:"role"`
	UserID string     `json:"user_id"`
	jwt.RegisteredClaims
}

// GetUserKey returns the identity the claims name.
// This implements the middleware.Principal interface.
func (c *Claims) GetUserKey() types.UserKey {
	return types.UserKey{Role: c.Role, ID: c.UserID}
}

// GetTokenID returns the jti claim.
func (c *Claims) GetTokenID() string {
	return c.ID
}

// AsTokenValidator returns a TokenValidator adapter for this JWTService.
// This allows the JWTService to be used with middleware without creating import cycles.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return &jwtServiceValidator{service: s}
}

// jwtServiceValidator adapts JWTService to middleware.TokenValidator interface.
type jwtServiceValidator struct {
	service *JWTService
}

func (v *jwtServiceValidator) ValidateToken(ctx context.Context, tokenString string) (middleware.Principal, error) {
	claims, err := v.service.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JWTService provides JWT token generation, validation and revocation.
type JWTService struct {
	config  *config.JWTConfig
	revoker session.Revoker
	now     func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
// A nil revoker keeps revocations in memory.
func NewJWTService(cfg *config.JWTConfig, revoker session.Revoker) *JWTService {
	if revoker == nil {
		revoker = session.NewMemoryRevoker()
	}
	return &JWTService{
		config:  cfg,
		revoker: revoker,
		now:     time.Now,
	}
}

// GenerateToken generates a signed token for user.
func (s *JWTService) GenerateToken(user *types.User) (string, error) {
	if user == nil {
		return "", fmt.Errorf("cannot issue a token without a user")
	}
	now := s.now()

	claims := &Claims{
		Role:   user.Role(),
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.Key().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a token and returns its claims. Revoked tokens are
// refused with *session.ErrTokenRevoked.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if !claims.Role.Valid() || claims.UserID == "" || claims.ID == "" {
		return nil, fmt.Errorf("token does not name a user")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, &session.ErrTokenRevoked{TokenID: claims.ID}
	}

	return claims, nil
}

// Revoke denies the token identified by claims until it would have expired.
func (s *JWTService) Revoke(ctx context.Context, claims middleware.Principal) error {
	until := s.now().Add(s.config.TTL())
	if c, ok := claims.(*Claims); ok && c.ExpiresAt != nil {
		until = c.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.GetTokenID(), until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
