package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain picks up a .env from the package directory or the repo root.
// Neither is required.
func TestMain(m *testing.M) {
	for _, path := range []string{".env", "../../.env"} {
		_ = godotenv.Load(path)
	}

	os.Exit(m.Run())
}
