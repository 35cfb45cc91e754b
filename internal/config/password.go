package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// MaxBcryptCost bounds BCRYPT_COST; higher costs make logins noticeably slow.
const MaxBcryptCost = 14

// ErrPasswordMismatch is returned by CheckPassword when the password does not match.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig creates a password configuration from environment variables.
// It reads BCRYPT_COST (default: 12) and optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := 12
	if raw := os.Getenv("BCRYPT_COST"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = parsed
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > MaxBcryptCost {
		return fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", c.BcryptCost, bcrypt.MinCost, MaxBcryptCost)
	}
	if c.BcryptCost < bcrypt.DefaultCost {
		log.Printf("[config] warning: BCRYPT_COST %d is below the recommended %d", c.BcryptCost, bcrypt.DefaultCost)
	}
	return nil
}

func (c *PasswordConfig) peppered(pw string) []byte {
	return []byte(pw + c.Pepper)
}

// HashPassword hashes a password using bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	if len(c.peppered(pw)) > 72 {
		return "", fmt.Errorf("password too long: bcrypt accepts at most 72 bytes including pepper")
	}
	hash, err := bcrypt.GenerateFromPassword(c.peppered(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares pw against a stored hash. It returns
// ErrPasswordMismatch for a wrong password and another error when the hash
// itself is unusable.
func (c *PasswordConfig) CheckPassword(pw, storedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), c.peppered(pw))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("failed to verify password: %w", err)
	}
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	return c.CheckPassword(pw, storedHash) == nil
}
