package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"desk-reservation-backend/internal/model"
)

// Store defines the interface for all database operations.
// It is the only mutation path for users, reservations and push subscriptions.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, username, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	FindReservations(ctx context.Context, deskID int64) ([]model.Reservation, error)
	FindReservationsInMonth(ctx context.Context, deskID int64, year int, month time.Month) ([]model.Reservation, error)
	FindOverlapping(ctx context.Context, deskID int64, start, end time.Time) ([]model.Reservation, error)
	FindReservationsByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	InsertReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, deskID, userID int64) (*model.Reservation, error)
	DeleteReservationByID(ctx context.Context, id, deskID, userID int64) (*model.Reservation, error)

	SaveSubscription(ctx context.Context, sub *model.PushSubscription, deskIDs []int64) error
	FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	FindSubscriptionsByDesk(ctx context.Context, deskID int64) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// FindUserByEmail returns the user registered under email, or ErrNotFound.
func (s *gormStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user. Both username and email must be unused.
func (s *gormStore) CreateUser(ctx context.Context, username, email string) (*model.User, error) {
	user := model.User{Username: username, Email: email}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&model.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check user uniqueness: %w", err)
		}
		if taken > 0 {
			return ErrUserExists
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %q: %w", username, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every registered user in creation order.
func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// FindReservations returns all reservations of a desk ordered by start time.
func (s *gormStore) FindReservations(ctx context.Context, deskID int64) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("desk_id = ?", deskID).
		Order("start_time, id").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservations for desk %d: %w", deskID, err)
	}
	return reservations, nil
}

// FindReservationsInMonth returns reservations of a desk that intersect the
// calendar month. December rolls over into January of the next year.
func (s *gormStore) FindReservationsInMonth(ctx context.Context, deskID int64, year int, month time.Month) ([]model.Reservation, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	var reservations []model.Reservation
	if err := overlapping(s.db.WithContext(ctx), deskID, monthStart, nextMonthStart).
		Order("start_time, id").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservations for desk %d in %d-%02d: %w", deskID, year, month, err)
	}
	return reservations, nil
}

// FindOverlapping returns reservations where existing.start < end AND existing.end > start.
func (s *gormStore) FindOverlapping(ctx context.Context, deskID int64, start, end time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := overlapping(s.db.WithContext(ctx), deskID, start.UTC(), end.UTC()).
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping reservations for desk %d: %w", deskID, err)
	}
	return reservations, nil
}

// FindReservationsByUser returns all reservations held by a user.
func (s *gormStore) FindReservationsByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time, id").
		Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to find reservations for user %d: %w", userID, err)
	}
	return reservations, nil
}

// InsertReservation runs the overlap check and the insert in one transaction.
// It returns ErrOverlap when the interval is already taken on that desk.
func (s *gormStore) InsertReservation(ctx context.Context, r *model.Reservation) error {
	r.StartTime = r.StartTime.UTC()
	r.EndTime = r.EndTime.UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts int64
		if err := overlapping(tx.Model(&model.Reservation{}), r.DeskID, r.StartTime, r.EndTime).
			Count(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to check overlapping reservations for desk %d: %w", r.DeskID, err)
		}
		if conflicts > 0 {
			return ErrOverlap
		}
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("failed to insert reservation for desk %d: %w", r.DeskID, err)
		}
		return nil
	})
}

// DeleteReservation removes the first reservation matching the desk and user,
// ordered by start time then id.
func (s *gormStore) DeleteReservation(ctx context.Context, deskID, userID int64) (*model.Reservation, error) {
	return s.deleteFirst(ctx, "desk_id = ? AND user_id = ?", deskID, userID)
}

// DeleteReservationByID removes one specific reservation owned by the user on that desk.
func (s *gormStore) DeleteReservationByID(ctx context.Context, id, deskID, userID int64) (*model.Reservation, error) {
	return s.deleteFirst(ctx, "id = ? AND desk_id = ? AND user_id = ?", id, deskID, userID)
}

func (s *gormStore) deleteFirst(ctx context.Context, query string, args ...any) (*model.Reservation, error) {
	var reservation model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(query, args...).Order("start_time, id").Take(&reservation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find reservation to delete: %w", err)
		}
		if err := tx.Delete(&model.Reservation{}, reservation.ID).Error; err != nil {
			return fmt.Errorf("failed to delete reservation %d: %w", reservation.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// SaveSubscription creates or replaces a subscription and its desk list.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription, deskIDs []int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Desks").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.DeskSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to clear desk subscriptions: %w", err)
		}

		if len(deskIDs) == 0 {
			sub.Desks = nil
			return nil
		}
		rows := make([]model.DeskSubscription, 0, len(deskIDs))
		seen := make(map[int64]bool, len(deskIDs))
		for _, id := range deskIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, model.DeskSubscription{Endpoint: sub.Endpoint, DeskID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save desk subscriptions: %w", err)
		}
		sub.Desks = rows
		return nil
	})
}

// FindSubscription returns a subscription with its desk list, or ErrNotFound.
func (s *gormStore) FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Desks").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription and its desk list. Deleting an
// unknown endpoint is not an error.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.DeskSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete desk subscriptions: %w", err)
		}
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

// FindSubscriptionsByDesk returns every subscription that asked to hear about deskID.
func (s *gormStore) FindSubscriptionsByDesk(ctx context.Context, deskID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).
		Joins("JOIN desk_subscriptions ds ON ds.endpoint = push_subscriptions.endpoint").
		Where("ds.desk_id = ?", deskID).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to find subscriptions for desk %d: %w", deskID, err)
	}
	return subs, nil
}

// overlapping scopes q to reservations of deskID intersecting [start, end).
func overlapping(q *gorm.DB, deskID int64, start, end time.Time) *gorm.DB {
	return q.Where("desk_id = ? AND start_time < ? AND end_time > ?", deskID, end, start)
}
