package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{name: "default cost", cost: "", wantCost: 12},
		{name: "valid cost", cost: "11", wantCost: 11},
		{name: "minimum cost", cost: "4", wantCost: bcrypt.MinCost},
		{name: "cost too low", cost: "3", wantErr: true},
		{name: "cost too high", cost: "15", wantErr: true},
		{name: "non-numeric", cost: "invalid", wantErr: true},
		{name: "with pepper", cost: "10", pepper: "test-pepper", wantCost: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	a, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cfg.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, cfg.VerifyPassword("same-password", a))
	assert.True(t, cfg.VerifyPassword("same-password", b))
}

func TestPepper_RequiredForVerification(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper"}
	plain := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := peppered.HashPassword("secret-password")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret-password", hash))
	assert.False(t, plain.VerifyPassword("secret-password", hash))
}

func TestCheckPassword_Errors(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	hash, err := cfg.HashPassword("secret-password")
	require.NoError(t, err)

	assert.NoError(t, cfg.CheckPassword("secret-password", hash))
	assert.True(t, errors.Is(cfg.CheckPassword("nope", hash), ErrPasswordMismatch))

	err = cfg.CheckPassword("secret-password", "not-a-hash")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPasswordMismatch))
}

func TestHashPassword_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	_, err := cfg.HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}
