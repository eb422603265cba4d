package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"desk-reservation-backend/internal/store"
)

type loginForm struct {
	Email    string `form:"email" binding:"required,email,max=120"`
	Username string `form:"username" binding:"omitempty,max=50"`
}

// Index renders the login page with the list of known users.
func (h *Handler) Index(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	email, _ := h.sessions.Email(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Users": users,
		"Email": email,
	})
}

// Login finds the user by email, creating it when a username is supplied,
// and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, formErrorMessage(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.FindUserByEmail(ctx, form.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if form.Username == "" {
			badRequest(c, "username is required for new users.")
			return
		}
		user, err = h.store.CreateUser(ctx, form.Username, form.Email)
		if errors.Is(err, store.ErrUserExists) {
			c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
				Message: "Username or email is already taken.",
				Code:    "user_exists",
			})
			return
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	case err != nil:
		h.respondError(c, err)
		return
	}

	if err := h.sessions.Issue(c, user.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/booking")
}

// Booking renders the booking page for a logged-in user.
func (h *Handler) Booking(c *gin.Context) {
	email, ok := h.sessions.Email(c)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "booking.html", gin.H{"Email": email})
}

// Logoff clears the session.
func (h *Handler) Logoff(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, "/")
}
