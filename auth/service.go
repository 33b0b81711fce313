// service.go - Checks credentials and issues or verifies tokens

package auth

import (
	"context"
	"errors"
	"sync"

	"go-user-service/database"
	"go-user-service/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("no active account found with the given credentials")

// Credentials are what a client trades for a token pair.
type Credentials struct {
	Username string
	Password string
}

// UserFinder looks accounts up by username.
type UserFinder interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service checks credentials and hands out tokens.
type Service struct {
	users UserFinder
	jwt   *JWTManager
}

func NewService(users UserFinder, jwt *JWTManager) *Service {
	return &Service{users: users, jwt: jwt}
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// burnHash spends one bcrypt comparison so unknown usernames take as long as wrong passwords.
func burnHash(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IssueToken returns a token pair for valid credentials of an active user.
func (s *Service) IssueToken(ctx context.Context, creds Credentials) (TokenPair, error) {
	user, err := s.users.ByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			burnHash(creds.Password)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !user.CheckPassword(creds.Password) || !user.IsActive {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.jwt.IssuePair(user.ID)
}

// VerifyToken accepts any valid token this service issued, access or refresh.
func (s *Service) VerifyToken(token string) error {
	_, err := s.jwt.Parse(token, "")
	return err
}

// AuthenticateAccess validates a bearer token; refresh tokens are refused.
func (s *Service) AuthenticateAccess(token string) (*Claims, error) {
	return s.jwt.Parse(token, TokenTypeAccess)
}
