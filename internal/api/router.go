package api

import (
	"fmt"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"desk-reservation-backend/internal/mw"
	"desk-reservation-backend/internal/schedule"
	"desk-reservation-backend/internal/session"
	"desk-reservation-backend/internal/store"
)

// Options wires the router to its collaborators.
type Options struct {
	Store    store.Store
	Engine   *schedule.Engine
	Sessions *session.Manager
	Webpush  *webpush.Options
	Logger   zerolog.Logger

	// TemplatesDir overrides the embedded page templates when set.
	TemplatesDir string
	// RateLimit is requests per second per client IP on write routes. Zero disables limiting.
	RateLimit rate.Limit
	RateBurst int
	// CacheTTL is how long read-only JSON responses are cached. Zero disables caching.
	CacheTTL time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(opts Options) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(mw.RequestLogger(opts.Logger), mw.Recovery(opts.Logger))

	tmpl, err := loadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := staticFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	r.StaticFS("/static", static)

	handler := NewHandler(opts.Store, opts.Engine, opts.Sessions, opts.Webpush, opts.Logger)

	var rateLimiter gin.HandlerFunc = passThrough
	if opts.RateLimit > 0 {
		rateLimiter = mw.RateLimiter(opts.RateLimit, opts.RateBurst)
	}

	var caching gin.HandlerFunc = passThrough
	if opts.CacheTTL > 0 {
		responseCache := mw.NewResponseCache(opts.CacheTTL)
		caching = responseCache.Middleware()
		handler.onChange = responseCache.Flush
	}

	r.GET("/healthz", handler.Healthz)

	// Pages
	r.GET("/", handler.Index)
	r.POST("/", rateLimiter, handler.Login)
	r.GET("/booking", handler.Booking)
	r.GET("/logoff", handler.Logoff)
	r.GET("/reservation_info", handler.ReservationInfo)
	r.GET("/user_reservations", handler.UserReservations)
	r.POST("/reserve_desk", rateLimiter, handler.ReserveDesk)
	r.POST("/unreserve_desk", rateLimiter, handler.UnreserveDesk)

	// Desk data, flushed from the cache whenever a booking or cancellation succeeds.
	r.GET("/desks", caching, handler.GetDesks)
	r.GET("/reservations/:desk_id", caching, handler.GetDeskReservations)
	r.GET("/reservations/:desk_id/month/:year/:month", caching, handler.GetMonthlyOccupancy)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r, nil
}

func passThrough(c *gin.Context) {
	c.Next()
}
