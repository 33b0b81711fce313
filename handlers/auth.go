// auth.go - Token obtain and verify endpoints

package handlers

import (
	"errors"
	"net/http"

	"go-user-service/apperr"
	"go-user-service/auth"

	"github.com/gin-gonic/gin"
)

// ObtainToken trades username and password for an access/refresh pair.
func (h *Handler) ObtainToken(c *gin.Context) {
	var input TokenObtainInput
	if err := bind(c, &input); err != nil {
		apperr.Respond(c, err)
		return
	}

	pair, err := h.tokens.IssueToken(c.Request.Context(), auth.Credentials{
		Username: normalizeUsername(input.Username),
		Password: input.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			apperr.Respond(c, apperr.Unauthorized("No active account found with the given credentials", "no_active_account"))
			return
		}
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// VerifyToken answers 200 for any live token this service issued, 401 otherwise.
func (h *Handler) VerifyToken(c *gin.Context) {
	var input TokenVerifyInput
	if err := bind(c, &input); err != nil {
		apperr.Respond(c, err)
		return
	}

	if err := h.tokens.VerifyToken(input.Token); err != nil {
		apperr.Respond(c, apperr.Unauthorized("Token is invalid or expired", "token_not_valid"))
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
