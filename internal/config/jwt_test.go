package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789"

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, DefaultJWTIssuer, cfg.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.TTL())
}

func TestNewJWTConfig_Env(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		wantHours  int
		wantErr    string
	}{
		{name: "custom expiration", secret: testSecret, expiration: "12", wantHours: 12},
		{name: "minimum expiration", secret: testSecret, expiration: "1", wantHours: 1},
		{name: "zero expiration", secret: testSecret, expiration: "0", wantErr: "between 1 and 720"},
		{name: "too long", secret: testSecret, expiration: "721", wantErr: "between 1 and 720"},
		{name: "non-numeric", secret: testSecret, expiration: "soon", wantErr: "invalid JWT_EXPIRATION_HOURS"},
		{name: "missing secret", secret: "", expiration: "12", wantErr: "JWT_SECRET is required"},
		{name: "short secret", secret: "short", expiration: "12", wantErr: "at least 16 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_CustomIssuer(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ISSUER", "jobboard-staging")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "jobboard-staging", cfg.Issuer)
}
