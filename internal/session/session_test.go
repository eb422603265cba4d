package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desk-reservation-backend/config"
)

func newManager() *Manager {
	return NewManager(config.SessionConfig{Secret: "test-secret", CookieName: "sid", TTL: time.Hour})
}

func TestManager_SignParse(t *testing.T) {
	m := newManager()

	token, err := m.Sign("ada@example.com")
	require.NoError(t, err)

	email, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
}

func TestManager_ParseRejects(t *testing.T) {
	m := newManager()
	token, err := m.Sign("ada@example.com")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager(config.SessionConfig{Secret: "other", TTL: time.Hour})
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("expired", func(t *testing.T) {
		late := newManager()
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestManager_CookieRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager()

	r := gin.New()
	r.GET("/login", func(c *gin.Context) {
		require.NoError(t, m.Issue(c, "ada@example.com"))
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", func(c *gin.Context) {
		email, ok := m.Email(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.String(http.StatusOK, email)
	})
	r.GET("/logout", func(c *gin.Context) {
		m.Clear(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}
