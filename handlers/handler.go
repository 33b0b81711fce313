// handler.go - Handler dependencies and route table

package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go-user-service/apperr"
	"go-user-service/auth"
	"go-user-service/middleware"
	"go-user-service/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserRepository is the persistence the handlers need.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	Taken(ctx context.Context, column, value string, excludeID uint) (bool, error)
	Update(ctx context.Context, u *models.User, columns ...string) (*models.User, error)
}

// TokenService issues and checks tokens.
type TokenService interface {
	IssueToken(ctx context.Context, creds auth.Credentials) (auth.TokenPair, error)
	VerifyToken(token string) error
	AuthenticateAccess(token string) (*auth.Claims, error)
}

// EventPublisher receives account events. Optional.
type EventPublisher interface {
	Publish(event string, payload any) error
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	users  UserRepository
	tokens TokenService
	events EventPublisher
	db     Pinger
	log    zerolog.Logger

	inflight sync.WaitGroup // account events still being published
}

// New builds a Handler. events may be nil when MQTT is disabled.
func New(users UserRepository, tokens TokenService, events EventPublisher, db Pinger, log zerolog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, events: events, db: db, log: log}
}

// NewRouter wires every route. Profile routes sit behind the bearer middleware.
func NewRouter(h *Handler) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(middleware.RequestLogger(h.log))
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		apperr.Respond(c, apperr.Internal(fmt.Errorf("panic: %v", rec)))
	}))
	r.NoRoute(func(c *gin.Context) {
		apperr.Respond(c, apperr.NotFound("resource"))
	})

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/token", h.ObtainToken)
	api.POST("/token/verify", h.VerifyToken)

	users := api.Group("/users")
	users.POST("/register", h.Register)

	profile := users.Group("/profile", middleware.AuthMiddleware(h.tokens, h.users))
	profile.GET("", h.GetProfile)
	profile.PATCH("", h.PatchProfile)
	profile.PUT("", h.PutProfile)

	return r
}

const (
	EventRegistered = "registered"
	EventUpdated    = "updated"
)

// AccountEvent is published after a user is created or changed.
type AccountEvent struct {
	Event    string      `json:"event"`
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Fields   []string    `json:"fields,omitempty"`
	At       time.Time   `json:"at"`
}

// publish sends the event in the background; failures are logged only.
func (h *Handler) publish(c *gin.Context, event string, u *models.User, fields []string) {
	if h.events == nil {
		return
	}
	ev := AccountEvent{
		Event:    event,
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Fields:   fields,
		At:       time.Now().UTC(),
	}
	l := zerolog.Ctx(c.Request.Context())
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		if err := h.events.Publish(event, ev); err != nil {
			l.Warn().Err(err).Str("event", event).Uint("user_id", ev.UserID).Msg("account event not published")
		}
	}()
}

// Drain waits for account events still being published, or until ctx is done.
// Call it after the HTTP server has stopped and before the publisher is closed.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
