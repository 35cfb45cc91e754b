package server

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	cfg := &config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
		Issuer:          config.DefaultJWTIssuer,
	}
	return NewJWTService(cfg, nil)
}

var (
	testSeeker   = types.NewJobSeeker("1", "Alex Johnson", "alex@example.com", time.Time{}, types.JobSeekerProfile{})
	testEmployer = types.NewEmployer("1", "Tech Innovations", "hr@techinnovations.com", time.Time{}, types.EmployerProfile{Company: "Tech Innovations Inc."})
)

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)

	// Test token format is valid JWT (three parts separated by dots)
	parts := strings.Split(token, ".")
	assert.Equal(t, 3, len(parts), "JWT should have 3 parts separated by dots")
}

func TestJWTService_GenerateToken_NilUser(t *testing.T) {
	service := setupTestJWTService(t, 24)
	_, err := service.GenerateToken(nil)
	assert.Error(t, err)
}

func TestJWTService_ClaimsCarryRole(t *testing.T) {
	service := setupTestJWTService(t, 24)

	seekerToken, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)
	employerToken, err := service.GenerateToken(testEmployer)
	require.NoError(t, err)

	seekerClaims, err := service.ValidateToken(context.Background(), seekerToken)
	require.NoError(t, err)
	employerClaims, err := service.ValidateToken(context.Background(), employerToken)
	require.NoError(t, err)

	// Both users have id 1; the role keeps them apart.
	assert.Equal(t, types.UserKey{Role: types.RoleJobSeeker, ID: "1"}, seekerClaims.GetUserKey())
	assert.Equal(t, types.UserKey{Role: types.RoleEmployer, ID: "1"}, employerClaims.GetUserKey())
	assert.NotEqual(t, seekerClaims.GetTokenID(), employerClaims.GetTokenID())
	assert.Equal(t, config.DefaultJWTIssuer, seekerClaims.Issuer)
	assert.Equal(t, "jobSeeker:1", seekerClaims.Subject)
}

func TestJWTService_Expiration(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)
	claims, err := service.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	expiresAt := claims.ExpiresAt.Time
	issuedAt := claims.IssuedAt.Time
	assert.WithinDuration(t, issuedAt.Add(24*time.Hour), expiresAt, time.Second)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	service := setupTestJWTService(t, 1)
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestJWTService_InvalidTokens(t *testing.T) {
	service := setupTestJWTService(t, 24)
	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-of-enough-length", ExpirationHours: 24, Issuer: config.DefaultJWTIssuer}, nil)
	foreign := NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 24, Issuer: "someone-else"}, nil)

	wrongKey, err := other.GenerateToken(testSeeker)
	require.NoError(t, err)
	wrongIssuer, err := foreign.GenerateToken(testSeeker)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: types.RoleAdmin, UserID: "1"})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.valid.jwt.token"},
		{name: "wrong signing key", token: wrongKey},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "alg none", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(context.Background(), tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_Revoke(t *testing.T) {
	service := setupTestJWTService(t, 24)
	ctx := context.Background()

	token, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)
	claims, err := service.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, claims))

	_, err = service.ValidateToken(ctx, token)
	var revoked *session.ErrTokenRevoked
	require.ErrorAs(t, err, &revoked)
	assert.Equal(t, claims.ID, revoked.TokenID)

	// Other tokens for the same user are unaffected.
	fresh, err := service.GenerateToken(testSeeker)
	require.NoError(t, err)
	_, err = service.ValidateToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	token, err := service.GenerateToken(testEmployer)
	require.NoError(t, err)

	principal, err := service.AsTokenValidator().ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, testEmployer.Key(), principal.GetUserKey())
}
