// Package session identifies the acting user across requests with a signed
// cookie holding the user's email.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"desk-reservation-backend/config"
)

const issuer = "desk-reservation"

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no active session")

// Manager issues, reads and clears session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a session manager from configuration.
func NewManager(cfg config.SessionConfig) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	name := cfg.CookieName
	if name == "" {
		name = "desk_session"
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Sign returns a signed session token for email.
func (m *Manager) Sign(email string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns the email it carries.
func (m *Manager) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrNoSession
	}
	return claims.Subject, nil
}

// Issue writes a session cookie for email.
func (m *Manager) Issue(c *gin.Context, email string) error {
	token, err := m.Sign(email)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// Email returns the session user's email, if any.
func (m *Manager) Email(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err != nil || token == "" {
		return "", false
	}
	email, err := m.Parse(token)
	if err != nil {
		return "", false
	}
	return email, true
}

// Clear expires the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
