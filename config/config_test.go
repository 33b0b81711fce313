package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "data.db", cfg.DBPath)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, "users", cfg.MQTTTopicPrefix)
	assert.Empty(t, cfg.MQTTBroker)
	assert.False(t, cfg.AdminSeedEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_PATH", "/tmp/users.db")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("CREATE_ADMIN", "true")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "rootpass")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/users.db", cfg.DBPath)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.True(t, cfg.AdminSeedEnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestAdminSeedNeedsCredentials(t *testing.T) {
	cfg := &Config{CreateAdmin: true, AdminEmail: "root@example.com"}
	assert.False(t, cfg.AdminSeedEnabled())
}

func TestLoadRejectsAdminPasswordLongerThanBcryptAccepts(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CREATE_ADMIN", "true")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", strings.Repeat("x", 73))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	cfg := &Config{CreateAdmin: true, AdminEmail: "root@example.com", AdminPassword: strings.Repeat("x", 73)}
	assert.False(t, cfg.AdminSeedEnabled())

	cfg.AdminPassword = strings.Repeat("x", 72)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.AdminSeedEnabled())
}
