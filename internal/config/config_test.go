package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DB_FILE", "")
	t.Setenv("MAX_BODY_MB", "")
	t.Setenv("SERVER_TIMEOUT", "")
	t.Setenv("ADMIN_TOKEN_TTL", "")
	t.Setenv("WATCH_DB_FILE", "")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3577, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3577", cfg.Addr())
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "db.json", cfg.Store.File)
	assert.Equal(t, int64(5000<<20), cfg.Server.MaxBodySize)
	assert.Equal(t, 10*time.Minute, cfg.Server.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Realtime.WatchDBFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_DATABASE", "wines")
	t.Setenv("WATCH_DB_FILE", "false")
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "argon2id$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, "wines", cfg.DB.Database)
	assert.False(t, cfg.Realtime.WatchDBFile)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("bad port", func(t *testing.T) {
		t.Setenv("ADMIN_TOKEN", "x")
		t.Setenv("PORT", "eighty")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("ADMIN_TOKEN", "x")
		t.Setenv("PORT", "")
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown STORE_DRIVER")
	})

	t.Run("no admin credentials", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("STORE_DRIVER", "")
		t.Setenv("ADMIN_TOKEN", "")
		t.Setenv("ADMIN_PASSWORD_HASH", "")
		_, err := Load()
		assert.ErrorContains(t, err, "ADMIN_TOKEN")
	})
}
