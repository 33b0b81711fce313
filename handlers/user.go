// user.go - Handles user registration and the caller's own profile

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go-user-service/apperr"
	"go-user-service/database"
	"go-user-service/middleware"
	"go-user-service/models"

	"github.com/gin-gonic/gin"
)

// Register creates an account. Open to anonymous callers.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	// STEP 1: Field validation (required, format, length)
	var input RegisterInput
	if err := bind(c, &input); err != nil {
		apperr.Respond(c, err)
		return
	}

	// STEP 2: Cross-field check, only once every field is valid on its own
	if input.Password != input.ConfirmPassword {
		apperr.Respond(c, apperr.Field("password", msgPasswordsMatch))
		return
	}

	// The stored form of the username must pass the same rules as the raw input
	username, msg := cleanUsername(input.Username)
	if msg != "" {
		apperr.Respond(c, apperr.Field("username", msg))
		return
	}

	user := models.User{
		Username:  username,
		Email:     normalizeEmail(input.Email),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      models.RoleUser,
	}

	// STEP 3: Uniqueness, reported per field
	fields := apperr.FieldErrors{}
	for column, value := range map[string]string{"username": user.Username, "email": user.Email} {
		taken, err := h.users.Taken(ctx, column, value, 0)
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		if taken {
			fields.Add(column, uniqueMessage(column))
		}
	}
	if len(fields) > 0 {
		apperr.Respond(c, apperr.Validation(fields))
		return
	}

	// STEP 4: Hash and store; confirm_password goes no further
	if err := user.SetPassword(input.Password); err != nil {
		if errors.Is(err, models.ErrPasswordTooLong) {
			apperr.Respond(c, apperr.Field("password",
				fmt.Sprintf("Ensure this field has no more than %d bytes.", models.MaxPasswordBytes)))
			return
		}
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	if err := h.users.Create(ctx, &user); err != nil {
		apperr.Respond(c, storeError(err))
		return
	}

	h.publish(c, EventRegistered, &user, nil)
	c.JSON(http.StatusCreated, NewUserResponse(&user))
}

// GetProfile returns the authenticated caller.
func (h *Handler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.Unauthorized("Authentication credentials were not provided.", ""))
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// PatchProfile applies a partial update.
func (h *Handler) PatchProfile(c *gin.Context) { h.updateProfile(c, true) }

// PutProfile applies a full update; username and email must be present.
func (h *Handler) PutProfile(c *gin.Context) { h.updateProfile(c, false) }

func (h *Handler) updateProfile(c *gin.Context, partial bool) {
	ctx := c.Request.Context()
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperr.Respond(c, apperr.Unauthorized("Authentication credentials were not provided.", ""))
		return
	}

	var input ProfileInput
	if err := bind(c, &input); err != nil {
		apperr.Respond(c, err)
		return
	}

	fields := apperr.FieldErrors{}
	if !partial {
		if input.Username == nil {
			fields.Add("username", msgRequired)
		}
		if input.Email == nil {
			fields.Add("email", msgRequired)
		}
	}
	// username and email can never be blank
	if input.Username != nil && *input.Username == "" {
		fields.Add("username", msgBlank)
	}
	if input.Email != nil && *input.Email == "" {
		fields.Add("email", msgBlank)
	}
	if len(fields) > 0 {
		apperr.Respond(c, apperr.Validation(fields))
		return
	}

	// phone and image_url may be cleared with an explicit null
	nulls := nullFields(c, "phone", "image_url")

	updated := *user
	var columns []string
	if input.Username != nil {
		name, msg := cleanUsername(*input.Username)
		if msg != "" {
			apperr.Respond(c, apperr.Field("username", msg))
			return
		}
		updated.Username = name
		columns = append(columns, "username")
	}
	if input.Email != nil {
		updated.Email = normalizeEmail(*input.Email)
		columns = append(columns, "email")
	}
	if input.FirstName != nil {
		updated.FirstName = *input.FirstName
		columns = append(columns, "first_name")
	}
	if input.LastName != nil {
		updated.LastName = *input.LastName
		columns = append(columns, "last_name")
	}
	if input.Phone != nil || nulls["phone"] {
		updated.Phone = emptyToNil(input.Phone)
		columns = append(columns, "phone")
	}
	if input.ImageURL != nil || nulls["image_url"] {
		updated.ImageURL = emptyToNil(input.ImageURL)
		columns = append(columns, "image_url")
	}

	// Uniqueness excluding the caller
	for _, col := range []struct{ name, from, to string }{
		{"username", user.Username, updated.Username},
		{"email", user.Email, updated.Email},
	} {
		if col.from == col.to {
			continue
		}
		taken, err := h.users.Taken(ctx, col.name, col.to, user.ID)
		if err != nil {
			apperr.Respond(c, apperr.Internal(err))
			return
		}
		if taken {
			fields.Add(col.name, uniqueMessage(col.name))
		}
	}
	if len(fields) > 0 {
		apperr.Respond(c, apperr.Validation(fields))
		return
	}

	saved, err := h.users.Update(ctx, &updated, columns...)
	if err != nil {
		apperr.Respond(c, storeError(err))
		return
	}

	if len(columns) > 0 {
		h.publish(c, EventUpdated, saved, columns)
	}
	c.JSON(http.StatusOK, NewUserResponse(saved))
}

// storeError maps persistence failures onto API errors.
func storeError(err error) error {
	var dup *database.DuplicateError
	if errors.As(err, &dup) {
		return apperr.Field(dup.Field, uniqueMessage(dup.Field))
	}
	if errors.Is(err, database.ErrUserNotFound) {
		return apperr.NotFound("user")
	}
	return apperr.Internal(err)
}

// emptyToNil maps both an absent value and "" to NULL.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
