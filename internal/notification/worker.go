package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool tells push subscribers that a desk has been freed.
type WorkerPool struct {
	size      int
	jobs      chan int64
	store     store.Store
	webpush   *webpush.Options
	sender    NotificationSender
	deskNames map[int64]string
	log       zerolog.Logger
}

// NewWorkerPool creates a new worker pool. deskNames labels desks in messages.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, deskNames map[int64]string, log zerolog.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:      size,
		jobs:      make(chan int64, size*16),
		store:     s,
		webpush:   webpushOptions,
		sender:    &WebPushSender{},
		deskNames: deskNames,
		log:       log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case deskID := <-wp.jobs:
			wp.sendNotificationsForDesk(ctx, deskID)
		case <-ctx.Done():
			wp.log.Debug().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues a desk-freed event. It never blocks the caller; events are
// dropped when the queue is full.
func (wp *WorkerPool) Dispatch(deskID int64) {
	select {
	case wp.jobs <- deskID:
	default:
		wp.log.Warn().Int64("desk_id", deskID).Msg("notification queue full, dropping desk-freed event")
	}
}

func (wp *WorkerPool) sendNotificationsForDesk(ctx context.Context, deskID int64) {
	subscriptions, err := wp.store.FindSubscriptionsByDesk(ctx, deskID)
	if err != nil {
		wp.log.Error().Err(err).Int64("desk_id", deskID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label, ok := wp.deskNames[deskID]
	if !ok || label == "" {
		label = fmt.Sprintf("Desk %d", deskID)
	}
	message := fmt.Sprintf("%s is available again!", label)

	wp.log.Info().Int64("desk_id", deskID).Int("subscriptions", len(subscriptions)).Msg("sending desk-freed notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed.
	if resp.StatusCode == http.StatusGone {
		wp.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
