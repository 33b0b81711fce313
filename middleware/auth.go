// auth.go - JWT authentication middleware
//
// Authentication flow:
// 1. Extract the bearer token from the Authorization header
// 2. Validate signature, expiry and token type (access only)
// 3. Load the user named by the token and refuse inactive accounts
// 4. Store the user in the Gin context for handlers

package middleware

import (
	"context"
	"errors"
	"strings"

	"go-user-service/apperr"
	"go-user-service/auth"
	"go-user-service/database"
	"go-user-service/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const userKey = "user"

// TokenAuthenticator validates access tokens.
type TokenAuthenticator interface {
	AuthenticateAccess(token string) (*auth.Claims, error)
}

// UserLoader fetches the account a token belongs to.
type UserLoader interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid access token with 401.
func AuthMiddleware(tokens TokenAuthenticator, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Extract Authorization header ("Bearer <token>")
		header := c.GetHeader("Authorization")
		scheme, tokenStr, _ := strings.Cut(header, " ")
		if header == "" || !strings.EqualFold(scheme, "Bearer") {
			apperr.Respond(c, apperr.Unauthorized("Authentication credentials were not provided.", ""))
			return
		}
		tokenStr = strings.TrimSpace(tokenStr)
		if tokenStr == "" || strings.Contains(tokenStr, " ") {
			apperr.Respond(c, apperr.Unauthorized("Invalid Authorization header.", "bad_authorization_header"))
			return
		}

		// STEP 2: Parse and validate the JWT
		claims, err := tokens.AuthenticateAccess(tokenStr)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Given token not valid for any token type", "token_not_valid"))
			return
		}

		// STEP 3: Load the user; the token alone does not prove the account still exists
		user, err := users.ByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				apperr.Respond(c, apperr.Unauthorized("User not found", "user_not_found"))
				return
			}
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		if !user.IsActive {
			apperr.Respond(c, apperr.Unauthorized("User is inactive", "user_inactive"))
			return
		}

		// STEP 4: Expose the user to handlers and to the request logger
		c.Set(userKey, user)
		l := zerolog.Ctx(c.Request.Context()).With().Uint("user_id", user.ID).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
