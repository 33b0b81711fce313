// admin_test.go - Tests for the seeded admin account
// The seed runs at startup; these tests check the account it leaves behind behaves like any other.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"go-user-service/config"
	"go-user-service/database"
	"go-user-service/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedAdmin runs the startup seed against the test database
func seedAdmin(t *testing.T, env *testEnv) {
	t.Helper()
	cfg := &config.Config{
		CreateAdmin:   true,
		AdminUsername: "admin",
		AdminEmail:    "admin@test.com",
		AdminPassword: "adminpass",
	}
	require.NoError(t, database.CreateDefaultAdmin(context.Background(), env.db, cfg, zerolog.Nop()))
}

func TestSeededAdminCanLogIn(t *testing.T) {
	// STEP 1: Seed the admin
	env := setupTestEnv(t)
	seedAdmin(t, env)

	// STEP 2: Obtain a token with the configured credentials
	w := env.do(http.MethodPost, "/api/token", map[string]string{
		"username": "admin",
		"password": "adminpass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	access := decode(t, w)["access"].(string)

	// STEP 3: The profile reports the admin role
	w = env.do(http.MethodGet, "/api/users/profile", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ADMIN", body["role"])
	assert.Equal(t, "admin@test.com", body["email"])
}

func TestSeededAdminKeepsRoleOnUpdate(t *testing.T) {
	env := setupTestEnv(t)
	seedAdmin(t, env)
	admin, err := env.store.ByUsername(context.Background(), "admin")
	require.NoError(t, err)

	w := env.do(http.MethodPatch, "/api/users/profile", map[string]string{
		"first_name": "Root",
		"role":       "USER",
	}, env.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADMIN", decode(t, w)["role"])

	reloaded, err := env.store.ByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
	assert.Equal(t, "Root", reloaded.FirstName)
}

func TestSeedDoesNotBlockRegistration(t *testing.T) {
	env := setupTestEnv(t)
	seedAdmin(t, env)

	// The admin's username and email are taken like any other account's
	w := env.do(http.MethodPost, "/api/users/register",
		registration("admin", "admin@test.com", "password123", "password123"), "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"A user with that username already exists."}, body["username"])
	assert.Equal(t, []any{"user with this email already exists."}, body["email"])

	// Regular signups still get USER
	w = env.do(http.MethodPost, "/api/users/register",
		registration("someone", "someone@test.com", "password123", "password123"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "USER", decode(t, w)["role"])
}
