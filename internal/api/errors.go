package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"desk-reservation-backend/internal/schedule"
)

var (
	// ErrNotLoggedIn is returned when a request needs a session and has none.
	ErrNotLoggedIn = errors.New("user not logged in")
	// ErrUserNotFound is returned when the session names an unknown email.
	ErrUserNotFound = errors.New("user not found")
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{ErrNotLoggedIn, http.StatusUnauthorized, "not_logged_in", "User not logged in."},
	{ErrUserNotFound, http.StatusNotFound, "user_not_found", "User not found."},
	{schedule.ErrInvalidTimeRange, http.StatusBadRequest, "invalid_time_range", "End time must be after start time."},
	{schedule.ErrInvalidMonth, http.StatusBadRequest, "invalid_month", "Month must be between 1 and 12."},
	{schedule.ErrConflict, http.StatusBadRequest, "conflict", "This desk is already reserved for the selected time period."},
	{schedule.ErrDeskNotFound, http.StatusNotFound, "desk_not_found", "Desk not found."},
	{schedule.ErrReservationNotFound, http.StatusNotFound, "reservation_not_found", "Reservation not found."},
}

// respondError writes the JSON error for err. Errors outside the known
// taxonomy are logged and answered with an opaque 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.AbortWithStatusJSON(m.status, errorResponse{Message: m.message, Code: m.code})
			return
		}
	}

	h.log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unexpected error while handling request")
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Message: "An error occurred while processing your request.",
		Code:    "internal_error",
	})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Message: message, Code: "invalid_request"})
}
