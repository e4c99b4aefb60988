package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("AUTH_MODE", "remote")
	os.Setenv("MAX_UPLOAD_SIZE_BYTES", "1048576")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("AUTH_MODE")
		os.Unsetenv("MAX_UPLOAD_SIZE_BYTES")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "remote", cfg.Auth.Mode)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, DefaultAllowedTypes, cfg.Upload.AllowedTypes)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("AUTH_MODE")
	os.Unsetenv("MAX_UPLOAD_SIZE_BYTES")
	os.Unsetenv("ALLOWED_FILE_TYPES")

	cfg := Load()

	assert.Equal(t, "jwt", cfg.Auth.Mode)
	assert.Equal(t, DefaultMaxUploadSize, cfg.Upload.MaxSizeBytes)
	assert.Contains(t, cfg.Upload.AllowedTypes, "application/pdf")
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"a", "b"}

	os.Setenv(key, "application/pdf, image/png ,text/plain")
	assert.Equal(t, []string{"application/pdf", "image/png", "text/plain"}, getEnvList(key, def))

	os.Setenv(key, " , ,")
	assert.Equal(t, def, getEnvList(key, def))

	os.Unsetenv(key)
	assert.Equal(t, def, getEnvList(key, def))
}
