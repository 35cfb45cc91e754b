package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSeed_BuiltIn(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, validateSeed(&out, ""))
	assert.Equal(t, "built-in seed OK: 6 users (2 job seekers, 3 employers, 1 admins), 6 jobs, 3 applications\n", out.String())
}

func TestValidateSeed_File(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"users": [], "jobs": [], "applications": []}`), 0o644))
	var out bytes.Buffer
	require.NoError(t, validateSeed(&out, good))
	assert.Contains(t, out.String(), "OK: 0 users")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users": []}`), 0o644))
	assert.Error(t, validateSeed(&out, bad))

	assert.Error(t, validateSeed(&out, filepath.Join(dir, "missing.json")))
}
