package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// clearEnv unsets the given keys for the duration of the test, restoring
// whatever was there before. godotenv writes .env values into the process
// environment, so the restore also cleans up after Load.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

// chdir is t.Chdir from Go 1.24+, reimplemented for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(old)
	})
}

func resetAfter(t *testing.T) {
	t.Helper()
	secret, number, hash := JWTSecret, WhatsAppNumber, AdminPasswordHash
	t.Cleanup(func() {
		JWTSecret, WhatsAppNumber, AdminPasswordHash = secret, number, hash
	})
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	clearEnv(t, "JWT_SECRET", "WHATSAPP_NUMBER", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH")
	resetAfter(t)

	dir := t.TempDir()
	env := "JWT_SECRET=from_dot_env\nWHATSAPP_NUMBER=911111111111\nADMIN_PASSWORD=dotenvpass\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	chdir(t, dir)

	Load()

	assert.Equal(t, []byte("from_dot_env"), JWTSecret)
	assert.Equal(t, "911111111111", WhatsAppNumber)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(AdminPasswordHash), []byte("dotenvpass")))
}

func TestLoadFallbacksWithoutDotEnv(t *testing.T) {
	clearEnv(t, "JWT_SECRET", "WHATSAPP_NUMBER", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH")
	resetAfter(t)

	chdir(t, t.TempDir())

	Load()

	assert.Equal(t, []byte(defaultJWTSecret), JWTSecret)
	assert.Equal(t, defaultWhatsAppNumber, WhatsAppNumber)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(AdminPasswordHash), []byte("admin123")))
}

func TestLoadPrefersProvidedPasswordHash(t *testing.T) {
	clearEnv(t, "JWT_SECRET", "WHATSAPP_NUMBER", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH")
	resetAfter(t)

	precomputed, err := bcrypt.GenerateFromPassword([]byte("rotated"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("ADMIN_PASSWORD_HASH", string(precomputed))
	chdir(t, t.TempDir())

	Load()

	assert.Equal(t, string(precomputed), AdminPasswordHash)
}
