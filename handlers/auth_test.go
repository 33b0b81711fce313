package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-user-service/auth"
	"go-user-service/database"
	"go-user-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser", "test@example.com", "testpassword")

	// 1. Get token
	w := env.do(http.MethodPost, "/api/token", map[string]string{
		"username": "testuser",
		"password": "testpassword",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "access")
	require.Contains(t, body, "refresh")
	access := body["access"].(string)

	// 2. Verify token
	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": access}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// 3. Verify invalid token
	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": "invalidtoken"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body = decode(t, w)
	assert.Equal(t, "token_not_valid", body["code"])
	assert.Equal(t, "Token is invalid or expired", body["detail"])
}

func TestRegisterThenLoginScenario(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/users/register",
		registration("newuser", "new@example.com", "password123", "password123"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/token", map[string]string{
		"username": "newuser",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	pair := decode(t, w)

	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": pair["access"].(string)}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": pair["refresh"].(string)}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": "invalidtoken"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The issued access token opens the profile
	w = env.do(http.MethodGet, "/api/users/profile", nil, pair["access"].(string))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", decode(t, w)["email"])
}

func TestObtainTokenBadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser", "test@example.com", "testpassword")

	for _, creds := range []map[string]string{
		{"username": "testuser", "password": "wrongpass"},
		{"username": "nobody", "password": "testpassword"},
	} {
		w := env.do(http.MethodPost, "/api/token", creds, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "No active account found with the given credentials", decode(t, w)["detail"])
	}
}

func TestObtainTokenInactiveUser(t *testing.T) {
	env := setupTestEnv(t)
	u := env.createUser(t, "sleepy", "sleepy@example.com", "testpassword")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	w := env.do(http.MethodPost, "/api/token", map[string]string{
		"username": "sleepy",
		"password": "testpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A token issued before deactivation no longer opens the profile
	w = env.do(http.MethodGet, "/api/users/profile", nil, env.tokenFor(t, u))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "user_inactive", decode(t, w)["code"])
}

func TestObtainTokenMissingFields(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/token", map[string]string{"username": "x"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"This field is required."}, decode(t, w)["password"])

	w = env.do(http.MethodPost, "/api/token/verify", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "token")
}

func TestObtainTokenAcceptsForm(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser", "test@example.com", "testpassword")

	form := url.Values{"username": {"testuser"}, "password": {"testpassword"}}
	req, _ := http.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "access")
}

func TestVerifyExpiredToken(t *testing.T) {
	env := setupTestEnv(t)
	stale := auth.NewJWTManager("test-secret", "go-user-service", -time.Minute, -time.Minute)
	pair, err := stale.IssuePair(1)
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/token/verify", map[string]string{"token": pair.Access}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileTokenForDeletedUser(t *testing.T) {
	env := setupTestEnv(t)
	u := env.createUser(t, "ghost", "ghost@example.com", "testpassword")
	token := env.tokenFor(t, u)
	require.NoError(t, env.db.Delete(&models.User{}, u.ID).Error)

	_, err := env.store.ByID(context.Background(), u.ID)
	require.ErrorIs(t, err, database.ErrUserNotFound)

	w := env.do(http.MethodGet, "/api/users/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "user_not_found", decode(t, w)["code"])
}
