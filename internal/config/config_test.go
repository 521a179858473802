package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "STORE_DRIVER", "DATABASE_URL", "JWT_SECRET", "SESSION_TTL",
		"COOKIE_SECURE", "REDIS_ADDR", "REDIS_PASSWORD", "EVIDENCE_DIR", "LOGIN_RATE_PER_MIN",
		"DB_MAX_CONNS", "STAFF_HANDLES", "STATIC_DIR", "MIGRATE"} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 20, cfg.LoginRatePerMin)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.False(t, cfg.Production())
	assert.True(t, cfg.MigrateOnStartup)
	assert.Empty(t, cfg.StaffHandles)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("COOKIE_SECURE", "1")
	t.Setenv("STAFF_HANDLES", "admin, referee ,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"admin", "referee"}, cfg.StaffHandles)
}

func TestFromEnv_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("STORE_DRIVER")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nSTORE_DRIVER=memory\n"), 0o600))

	cfg, loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.StoreDriver)
}
