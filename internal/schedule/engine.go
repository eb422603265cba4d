// Package schedule decides whether a desk may be booked for an interval,
// cancels reservations and summarizes monthly desk occupancy.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"desk-reservation-backend/internal/confirm"
	"desk-reservation-backend/internal/model"
	"desk-reservation-backend/internal/store"
)

// Confirmer renders the confirmation for a stored reservation.
type Confirmer interface {
	Confirm(deskID int64, username string, start, end time.Time) (confirm.Confirmation, error)
}

// Notifier is told when a desk has been freed by a cancellation.
type Notifier interface {
	Dispatch(deskID int64)
}

// BookingRequest asks for desk DeskID over [Start, End) on behalf of User.
type BookingRequest struct {
	DeskID int64
	User   model.User
	Start  time.Time
	End    time.Time
}

// Booking is the result of a successful booking.
type Booking struct {
	Reservation  model.Reservation
	Confirmation confirm.Confirmation
}

// CancelRequest removes a reservation of UserID on DeskID. When ReservationID
// is zero the earliest matching reservation is removed.
type CancelRequest struct {
	DeskID        int64
	UserID        int64
	ReservationID int64
}

// UserReservation is a reservation joined with its desk's name.
type UserReservation struct {
	ReservationID int64
	DeskID        int64
	DeskName      string
	StartTime     time.Time
	EndTime       time.Time
}

// Engine owns the desk configuration and serializes bookings per desk.
type Engine struct {
	store     store.Store
	desks     []model.Desk
	byID      map[int64]model.Desk
	confirmer Confirmer
	notifier  Notifier
	log       zerolog.Logger

	// deskLocks is fixed at construction; unconfigured desk ids share strayLock.
	deskLocks map[int64]*sync.Mutex
	strayLock sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the receiver of desk-freed events.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over s for the given desks.
func NewEngine(s store.Store, desks []model.Desk, confirmer Confirmer, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		desks:     append([]model.Desk(nil), desks...),
		byID:      make(map[int64]model.Desk, len(desks)),
		confirmer: confirmer,
		log:       zerolog.Nop(),
		deskLocks: make(map[int64]*sync.Mutex, len(desks)),
	}
	for _, d := range e.desks {
		e.byID[d.ID] = d
		e.deskLocks[d.ID] = &sync.Mutex{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Desks returns the configured desks in declaration order.
func (e *Engine) Desks() []model.Desk {
	return append([]model.Desk(nil), e.desks...)
}

// Desk looks up a configured desk.
func (e *Engine) Desk(id int64) (model.Desk, bool) {
	d, ok := e.byID[id]
	return d, ok
}

// WallTime keeps the wall-clock minute of t and drops its zone, expressing it
// in UTC. Reservation times are zone-naive.
func WallTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// Book stores a reservation if the interval is valid and free on that desk.
// Intervals that merely touch an existing reservation are accepted.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (*Booking, error) {
	if !WallTime(req.Start).Before(WallTime(req.End)) {
		return nil, ErrInvalidTimeRange
	}
	if _, ok := e.byID[req.DeskID]; !ok {
		return nil, fmt.Errorf("desk %d: %w", req.DeskID, ErrDeskNotFound)
	}

	unlock := e.lockDesk(req.DeskID)
	defer unlock()

	reservation := model.Reservation{
		DeskID:    req.DeskID,
		UserID:    req.User.ID,
		StartTime: WallTime(req.Start),
		EndTime:   WallTime(req.End),
	}
	if err := e.store.InsertReservation(ctx, &reservation); err != nil {
		if errors.Is(err, store.ErrOverlap) {
			e.log.Info().
				Int64("desk_id", req.DeskID).
				Int64("user_id", req.User.ID).
				Time("start", req.Start).
				Time("end", req.End).
				Msg("booking rejected: overlapping reservation")
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to book desk %d: %w", req.DeskID, err)
	}

	confirmation, err := e.confirmer.Confirm(req.DeskID, req.User.Username, reservation.StartTime, reservation.EndTime)
	if err != nil {
		// The reservation is stored; the caller still gets the message without an image.
		e.log.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("failed to render confirmation")
	}

	e.log.Info().
		Int64("reservation_id", reservation.ID).
		Int64("desk_id", reservation.DeskID).
		Int64("user_id", reservation.UserID).
		Time("start", reservation.StartTime).
		Time("end", reservation.EndTime).
		Msg("desk reserved")

	return &Booking{Reservation: reservation, Confirmation: confirmation}, nil
}

// Cancel deletes a reservation and notifies desk subscribers.
func (e *Engine) Cancel(ctx context.Context, req CancelRequest) (*model.Reservation, error) {
	unlock := e.lockDesk(req.DeskID)
	defer unlock()

	var (
		deleted *model.Reservation
		err     error
	)
	if req.ReservationID > 0 {
		deleted, err = e.store.DeleteReservationByID(ctx, req.ReservationID, req.DeskID, req.UserID)
	} else {
		deleted, err = e.store.DeleteReservation(ctx, req.DeskID, req.UserID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("desk %d, user %d: %w", req.DeskID, req.UserID, ErrReservationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation on desk %d: %w", req.DeskID, err)
	}

	e.log.Info().
		Int64("reservation_id", deleted.ID).
		Int64("desk_id", deleted.DeskID).
		Int64("user_id", deleted.UserID).
		Msg("reservation cancelled")

	if e.notifier != nil {
		e.notifier.Dispatch(deleted.DeskID)
	}
	return deleted, nil
}

// DeskReservations lists all reservations of a desk.
func (e *Engine) DeskReservations(ctx context.Context, deskID int64) ([]model.Reservation, error) {
	return e.store.FindReservations(ctx, deskID)
}

// MonthlyOccupancy classifies every day of the month for a desk.
func (e *Engine) MonthlyOccupancy(ctx context.Context, deskID int64, year int, month time.Month) (map[int]DayStatus, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	reservations, err := e.store.FindReservationsInMonth(ctx, deskID, year, month)
	if err != nil {
		return nil, err
	}
	return MonthlyStatus(year, month, reservations), nil
}

// UserReservations lists a user's reservations with desk names. Reservations
// on desks that are no longer configured are skipped.
func (e *Engine) UserReservations(ctx context.Context, userID int64) ([]UserReservation, error) {
	reservations, err := e.store.FindReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]UserReservation, 0, len(reservations))
	for _, r := range reservations {
		desk, ok := e.byID[r.DeskID]
		if !ok {
			continue
		}
		out = append(out, UserReservation{
			ReservationID: r.ID,
			DeskID:        desk.ID,
			DeskName:      desk.Name,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
		})
	}
	return out, nil
}

// lockDesk enters the exclusive section for deskID and returns its release.
func (e *Engine) lockDesk(deskID int64) func() {
	l, ok := e.deskLocks[deskID]
	if !ok {
		l = &e.strayLock
	}
	l.Lock()
	return l.Unlock
}
