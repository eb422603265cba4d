package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"desk-reservation-backend/config"
	"desk-reservation-backend/internal/db"
	"desk-reservation-backend/internal/model"
)

// newSQLiteStore opens a migrated in-memory database private to the test.
func newSQLiteStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return NewGormStore(gormDB), gormDB
}

// newMockDB creates a mock database connection behind the postgres dialector.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestGormStore_Users(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	_, err := s.FindUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	ada, err := s.CreateUser(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	assert.NotZero(t, ada.ID)

	found, err := s.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, *ada, *found)

	t.Run("username taken", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "ada", "other@example.com")
		assert.ErrorIs(t, err, ErrUserExists)
	})
	t.Run("email taken", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "someone", "ada@example.com")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	_, err = s.CreateUser(ctx, "grace", "grace@example.com")
	require.NoError(t, err)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Username)
	assert.Equal(t, "grace", users[1].Username)
}

func TestGormStore_InsertReservation(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	first := &model.Reservation{DeskID: 1, UserID: 1, StartTime: at(1, 10, 0), EndTime: at(1, 12, 0)}
	require.NoError(t, s.InsertReservation(ctx, first))
	assert.NotZero(t, first.ID)

	testCases := []struct {
		name        string
		deskID      int64
		start, end  time.Time
		expectedErr error
	}{
		{name: "overlapping tail", deskID: 1, start: at(1, 11, 0), end: at(1, 13, 0), expectedErr: ErrOverlap},
		{name: "overlapping head", deskID: 1, start: at(1, 9, 0), end: at(1, 10, 1), expectedErr: ErrOverlap},
		{name: "enclosing", deskID: 1, start: at(1, 8, 0), end: at(1, 22, 0), expectedErr: ErrOverlap},
		{name: "adjacent after", deskID: 1, start: at(1, 12, 0), end: at(1, 13, 0)},
		{name: "adjacent before", deskID: 1, start: at(1, 9, 0), end: at(1, 10, 0)},
		{name: "other desk same window", deskID: 2, start: at(1, 10, 0), end: at(1, 12, 0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &model.Reservation{DeskID: tc.deskID, UserID: 2, StartTime: tc.start, EndTime: tc.end}
			err := s.InsertReservation(ctx, r)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Zero(t, r.ID)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, r.ID)
			}
		})
	}

	desk1, err := s.FindReservations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, desk1, 3)
	assert.Equal(t, at(1, 9, 0), desk1[0].StartTime.UTC())
	assert.Equal(t, at(1, 10, 0), desk1[1].StartTime.UTC())
	assert.Equal(t, at(1, 12, 0), desk1[2].StartTime.UTC())
}

func TestGormStore_FindOverlapping(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertReservation(ctx, &model.Reservation{DeskID: 1, UserID: 1, StartTime: at(1, 10, 0), EndTime: at(1, 12, 0)}))

	found, err := s.FindOverlapping(ctx, 1, at(1, 11, 0), at(1, 13, 0))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.FindOverlapping(ctx, 1, at(1, 12, 0), at(1, 13, 0))
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.FindOverlapping(ctx, 2, at(1, 11, 0), at(1, 13, 0))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormStore_FindReservationsInMonth(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	insert := func(start, end time.Time) {
		require.NoError(t, s.InsertReservation(ctx, &model.Reservation{DeskID: 1, UserID: 1, StartTime: start, EndTime: end}))
	}
	insert(time.Date(2024, time.February, 29, 20, 0, 0, 0, time.UTC), time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	insert(at(15, 9, 0), at(15, 10, 0))
	insert(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.April, 1, 1, 0, 0, 0, time.UTC))
	insert(time.Date(2024, time.December, 31, 9, 0, 0, 0, time.UTC), time.Date(2024, time.December, 31, 10, 0, 0, 0, time.UTC))
	insert(time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC), time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC))

	march, err := s.FindReservationsInMonth(ctx, 1, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, march, 2, "the reservation spilling in from February counts, April does not")

	december, err := s.FindReservationsInMonth(ctx, 1, 2024, time.December)
	require.NoError(t, err)
	require.Len(t, december, 1)
	assert.Equal(t, 31, december[0].StartTime.Day())

	other, err := s.FindReservationsInMonth(ctx, 2, 2024, time.March)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGormStore_DeleteReservation(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	later := &model.Reservation{DeskID: 1, UserID: 1, StartTime: at(2, 10, 0), EndTime: at(2, 11, 0)}
	earlier := &model.Reservation{DeskID: 1, UserID: 1, StartTime: at(1, 10, 0), EndTime: at(1, 11, 0)}
	other := &model.Reservation{DeskID: 1, UserID: 2, StartTime: at(3, 10, 0), EndTime: at(3, 11, 0)}
	for _, r := range []*model.Reservation{later, earlier, other} {
		require.NoError(t, s.InsertReservation(ctx, r))
	}

	deleted, err := s.DeleteReservation(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, earlier.ID, deleted.ID, "first match is the earliest reservation")

	_, err = s.DeleteReservationByID(ctx, other.ID, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound, "cannot delete another user's reservation")

	deleted, err = s.DeleteReservationByID(ctx, later.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, later.ID, deleted.ID)

	_, err = s.DeleteReservation(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := s.FindReservationsByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := s.FindReservationsByUser(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestGormStore_Subscriptions(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	sub := &model.PushSubscription{Endpoint: "https://push.example.com/a", P256DH: "key", Auth: "auth"}
	require.NoError(t, s.SaveSubscription(ctx, sub, []int64{1, 2, 2}))

	found, err := s.FindSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.Len(t, found.Desks, 2)

	byDesk, err := s.FindSubscriptionsByDesk(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byDesk, 1)
	assert.Equal(t, sub.Endpoint, byDesk[0].Endpoint)

	replaced := &model.PushSubscription{Endpoint: sub.Endpoint, P256DH: "key2", Auth: "auth2"}
	require.NoError(t, s.SaveSubscription(ctx, replaced, []int64{3}))

	found, err = s.FindSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.Equal(t, "key2", found.P256DH)
	require.Len(t, found.Desks, 1)
	assert.Equal(t, int64(3), found.Desks[0].DeskID)

	byDesk, err = s.FindSubscriptionsByDesk(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, byDesk)

	require.NoError(t, s.DeleteSubscription(ctx, sub.Endpoint))
	_, err = s.FindSubscription(ctx, sub.Endpoint)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.DeleteSubscription(ctx, "https://push.example.com/unknown"))
}

func TestGormStore_InsertReservation_SQL(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedID       int64
		expectedErr      error
	}{
		{
			name: "free window inserts",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations" WHERE desk_id = \$1 AND start_time < \$2 AND end_time > \$3`).
					WithArgs(1, Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`INSERT INTO "reservations"`).
					WithArgs(1, 5, Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectCommit()
			},
			expectedID: 7,
		},
		{
			name: "taken window rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations" WHERE desk_id = \$1 AND start_time < \$2 AND end_time > \$3`).
					WithArgs(1, Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			expectedErr: ErrOverlap,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newMockDB(t)
			s := NewGormStore(gormDB)
			tc.mockExpectations(mock)

			r := &model.Reservation{DeskID: 1, UserID: 5, StartTime: at(1, 10, 0), EndTime: at(1, 12, 0)}
			err := s.InsertReservation(context.Background(), r)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedID, r.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_DatabaseErrors(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).WillReturnError(boom)
	_, err := s.FindUserByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE user_id = \$1`).WillReturnError(boom)
	_, err = s.FindReservationsByUser(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
