// users.go - User store queries and constraint error translation

package database

import (
	"context"
	"errors"
	"strings"

	"go-user-service/models"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// DuplicateError reports a unique index violation on one users column.
type DuplicateError struct {
	Field string // "username" or "email"
	Err   error
}

func (e *DuplicateError) Error() string { return "duplicate " + e.Field }
func (e *DuplicateError) Unwrap() error { return e.Err }

// UserStore reads and writes users with gorm.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts u. A unique constraint failure comes back as *DuplicateError.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

// ByID loads a user with its addresses.
func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Addresses").First(&u, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Taken reports whether another user (id != excludeID) already has value in column.
// column must be "username" or "email".
func (s *UserStore) Taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	if column != "username" && column != "email" {
		return false, errors.New("unsupported column " + column)
	}
	var count int64
	q := s.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the given columns of u and reloads it with addresses.
func (s *UserStore) Update(ctx context.Context, u *models.User, columns ...string) (*models.User, error) {
	if len(columns) > 0 {
		if err := s.db.WithContext(ctx).Model(u).Select(columns).Updates(u).Error; err != nil {
			return nil, translate(err)
		}
	}
	return s.ByID(ctx, u.ID)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error() // UNIQUE constraint failed: users.email
		switch {
		case strings.Contains(msg, "users.email"):
			return &DuplicateError{Field: "email", Err: err}
		case strings.Contains(msg, "users.username"):
			return &DuplicateError{Field: "username", Err: err}
		}
	}
	return err
}

// Ping checks the underlying connection.
func (s *UserStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}
