package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "gcs")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("SERVICE_ACCOUNT_JSON", "")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"DATABASE_URL", "AUTH_SECRET", "STORAGE_BUCKET", "SERVICE_ACCOUNT_JSON"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadLocalStorage(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/menu")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
	assert.Equal(t, "91", cfg.Dispatch.CountryCode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidateRejectsUnknownDrivers(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "x"},
		Identity: IdentityConfig{Secret: "x"},
		Storage:  StorageConfig{Driver: "s3"},
		Cache:    CacheConfig{Driver: "memory"},
		Upload:   UploadConfig{MaxBytes: 1},
	}
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_DRIVER")
}

func TestLoadReportsMalformedValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/menu")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("UPLOAD_MAX_BYTES", "abc")
	t.Setenv("CACHE_TTL", "5 minutes")
	t.Setenv("DATABASE_MIGRATE", "yes please")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"UPLOAD_MAX_BYTES", "CACHE_TTL", "DATABASE_MIGRATE"} {
		assert.Contains(t, err.Error(), key)
	}
}
