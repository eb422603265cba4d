package api

import (
	"errors"
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/schedule"
	"desk-reservation-backend/internal/session"
	"desk-reservation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	engine   *schedule.Engine
	sessions *session.Manager
	webpush  *webpush.Options
	log      zerolog.Logger

	// onChange runs after a booking or cancellation succeeds.
	onChange func()
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *schedule.Engine, sessions *session.Manager, webpushOptions *webpush.Options, log zerolog.Logger) *Handler {
	return &Handler{
		store:    s,
		engine:   engine,
		sessions: sessions,
		webpush:  webpushOptions,
		log:      log,
		onChange: func() {},
	}
}

// currentUser resolves the session's email to a stored user.
func (h *Handler) currentUser(c *gin.Context) (*model.User, error) {
	email, ok := h.sessions.Email(c)
	if !ok {
		return nil, ErrNotLoggedIn
	}
	user, err := h.store.FindUserByEmail(c.Request.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session email %q: %w", email, ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
