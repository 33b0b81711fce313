// user.go - Defines the User model and its role

package models

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ErrInvalidRole is returned for any role outside the known set.
var ErrInvalidRole = errors.New("invalid role")

// MaxPasswordBytes is the longest input bcrypt hashes. Longer passwords are refused, not truncated.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// ParseRole accepts only ADMIN and USER. An empty string means USER.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	case "":
		return RoleUser, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User represents an account in the database.
type User struct {
	ID         uint      `gorm:"primaryKey"`
	Username   string    `gorm:"size:150;uniqueIndex;not null"`
	Email      string    `gorm:"size:254;uniqueIndex;not null"`
	Password   string    `gorm:"not null"` // bcrypt hash, never serialized
	FirstName  string    `gorm:"size:150"`
	LastName   string    `gorm:"size:150"`
	Phone      *string   `gorm:"size:50"`
	ImageURL   *string   `gorm:"size:255"`
	Role       Role      `gorm:"size:20;not null;default:USER"`
	IsActive   bool      `gorm:"not null;default:true"`
	DateJoined time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time
	Addresses  []Address `gorm:"constraint:OnDelete:CASCADE;"` // Owned addresses, removed with the user
}

// BeforeSave defaults the role to USER and rejects unknown roles.
func (u *User) BeforeSave(*gorm.DB) error {
	role, err := ParseRole(string(u.Role))
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

// SetPassword stores the bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	if len(raw) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether raw matches the stored hash.
func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}
