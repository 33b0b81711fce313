// validation.go - Request binding and field error messages

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go-user-service/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var registerOnce sync.Once

// registerValidators teaches gin's validator our tags and makes it report
// fields by their JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", validateUsername)
		_ = v.RegisterValidation("maxbytes", validateMaxBytes)
	})
}

// validateUsername allows letters, digits and @ . + - _
func validateUsername(fl validator.FieldLevel) bool {
	return validUsername(fl.Field().String())
}

// validateMaxBytes bounds the UTF-8 length, e.g. maxbytes=72 for bcrypt input.
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func validUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.@+-", r) {
			continue
		}
		return false
	}
	return true
}

// bind decodes the body (JSON or form, by Content-Type) into obj and validates it.
// An empty body validates the zero value, so missing fields are reported per field.
// JSON bodies are kept on the context for nullFields.
func bind(c *gin.Context, obj any) error {
	var err error
	if c.ContentType() == binding.MIMEJSON && c.Request.Body != nil {
		err = c.ShouldBindBodyWith(obj, binding.JSON)
	} else {
		err = c.ShouldBind(obj)
	}
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := apperr.FieldErrors{}
		for _, fe := range verrs {
			fields.Add(fe.Field(), fieldMessage(fe))
		}
		return apperr.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Field(typeErr.Field, "Not a valid string.")
	}
	return apperr.BadRequest("JSON parse error - "+err.Error(), err)
}

// nullFields reports which of names the JSON body set to an explicit null.
// A pointer field cannot tell null from absent after binding.
func nullFields(c *gin.Context, names ...string) map[string]bool {
	raw, ok := c.Get(gin.BodyBytesKey)
	if !ok {
		return nil
	}
	body, _ := raw.([]byte)
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	nulls := map[string]bool{}
	for _, name := range names {
		if v, present := m[name]; present && v == nil {
			nulls[name] = true
		}
	}
	return nulls
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Ensure this field has no more than %s bytes.", fe.Param())
	case "username":
		return msgUsername
	default:
		return "Invalid value."
	}
}

const (
	msgRequired       = "This field is required."
	msgBlank          = "This field may not be blank."
	msgPasswordsMatch = "Passwords must match."
	maxUsernameLen    = 150
	msgUsername       = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

func uniqueMessage(field string) string {
	if field == "username" {
		return "A user with that username already exists."
	}
	return "user with this " + field + " already exists."
}

// normalizeUsername applies NFKC so visually identical names compare equal.
func normalizeUsername(s string) string {
	return norm.NFKC.String(s)
}

// cleanUsername normalizes s and checks the result, since NFKC can expand one
// allowed rune into several, spaces included. msg is empty when the name is usable.
func cleanUsername(s string) (name, msg string) {
	name = normalizeUsername(s)
	switch {
	case !validUsername(name):
		return name, msgUsername
	case utf8.RuneCountInString(name) > maxUsernameLen:
		return name, fmt.Sprintf("Ensure this field has no more than %d characters.", maxUsernameLen)
	}
	return name, ""
}

// normalizeEmail lowercases the domain part and leaves the local part alone.
func normalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s
	}
	return s[:at] + "@" + strings.ToLower(s[at+1:])
}
