package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH0_DOMAIN", "test-domain.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "test-audience")
	t.Setenv("DB_USER", "stratmap")
	t.Setenv("DB_NAME", "stratmap")
}

func TestLoad(t *testing.T) {
	t.Run("既定値が適用される", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "pgx", cfg.DB.Driver)
		assert.Equal(t, 10, cfg.DB.MaxConns)
		assert.Equal(t, 30*time.Second, cfg.DB.IdleTimeout)
		assert.True(t, cfg.DB.Migrate)
		assert.False(t, cfg.Auth.ProtectUsers)
		assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("IDプロバイダのドメインからissuerとJWKSのURLを導出する", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://test-domain.auth0.com/", cfg.Auth.Issuer())
		assert.Equal(t, "https://test-domain.auth0.com/.well-known/jwks.json", cfg.Auth.KeySetURL())
	})

	t.Run("JWKSのURLを上書きできる", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("AUTH_JWKS_URL", "https://keys.example.com/jwks.json")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://keys.example.com/jwks.json", cfg.Auth.KeySetURL())
	})

	t.Run("AUTH0_DOMAINが未設定の場合はエラー", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("AUTH0_DOMAIN", "")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("未対応のドライバはエラー", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("SQLiteではPostgreSQLの接続情報が不要", func(t *testing.T) {
		t.Setenv("AUTH0_DOMAIN", "test-domain.auth0.com")
		t.Setenv("AUTH0_AUDIENCE", "test-audience")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DB_PATH", "/tmp/stratmap.db")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "file:/tmp/stratmap.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DB.DSN())
	})
}

func TestDBConfigDSN(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{
		Driver:   "pgx",
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "p@ss",
		Name:     "stratmap",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/stratmap?sslmode=disable", cfg.DSN())

	sc := cfg.StoreConfig()
	assert.Equal(t, "pgx", sc.Driver)
	assert.Equal(t, cfg.DSN(), sc.DSN)
}
