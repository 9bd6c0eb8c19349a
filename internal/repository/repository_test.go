package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

const updateSeatsSQL = `UPDATE flights\s+SET occupied_seats = \$1, available_seats = \$2, version = version \+ 1, updated_at = now\(\)\s+WHERE id = \$3 AND version = \$4\s+RETURNING version`

func TestUpdateSeats(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(updateSeatsSQL).
		WithArgs([]string{"1A", "1B"}, 58, "FL123", int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(int64(4)))

	version, err := repo.UpdateSeats(context.Background(), "FL123", 3, []string{"1A", "1B"}, 58)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
}

func TestUpdateSeats_StaleVersionIsConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(updateSeatsSQL).
		WithArgs([]string{"1A"}, 59, "FL123", int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM flights WHERE id=\$1\)`).
		WithArgs("FL123").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.UpdateSeats(context.Background(), "FL123", 2, []string{"1A"}, 59)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestUpdateSeats_MissingFlight(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock)

	mock.ExpectQuery(updateSeatsSQL).
		WithArgs([]string{"1A"}, 59, "FL404", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"version"}))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("FL404").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.UpdateSeats(context.Background(), "FL404", 1, []string{"1A"}, 59)
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestUpdateSeats_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewFlightRepository(mock)

	boom := errors.New("connection reset")
	mock.ExpectQuery(updateSeatsSQL).
		WithArgs([]string{"1A"}, 59, "FL123", int64(1)).
		WillReturnError(boom)

	_, err := repo.UpdateSeats(context.Background(), "FL123", 1, []string{"1A"}, 59)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}

const saveBookingSQL = `(?s)INSERT INTO bookings .* ON CONFLICT \(booking_id\) DO UPDATE\s+SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at\s+WHERE bookings.status = 'CONFIRMED'`

func testBooking(status domain.BookingStatus) *domain.Booking {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Booking{
		BookingID:      "b-1",
		PNR:            "PNR1773133200000abcdef",
		FlightID:       "FL123",
		UserEmail:      "alice@example.com",
		UserName:       "Alice",
		NumberOfSeats:  1,
		SelectedSeats:  []string{"1A"},
		MealPreference: domain.MealVeg,
		JourneyDate:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		TotalPrice:     100,
		Passengers:     []domain.Passenger{{Name: "Alice", Gender: "F", Age: 30}},
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func bookingArgs(b *domain.Booking) []any {
	return []any{b.BookingID, b.PNR, b.FlightID, b.UserEmail, b.UserName, b.NumberOfSeats, b.SelectedSeats, b.MealPreference, b.JourneyDate, b.TotalPrice, b.Passengers, b.Status, b.CreatedAt, b.UpdatedAt}
}

func TestSaveBooking_Insert(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	b := testBooking(domain.BookingStatusConfirmed)

	mock.ExpectExec(saveBookingSQL).
		WithArgs(bookingArgs(b)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Save(context.Background(), b))
}

func TestSaveBooking_CancelOfCancelledIsStale(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	b := testBooking(domain.BookingStatusCancelled)

	mock.ExpectExec(saveBookingSQL).
		WithArgs(bookingArgs(b)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	assert.ErrorIs(t, repo.Save(context.Background(), b), ErrStaleBooking)
}

func TestSaveBooking_ExecError(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)
	b := testBooking(domain.BookingStatusConfirmed)

	boom := errors.New("duplicate key value violates unique constraint \"bookings_pnr_key\"")
	mock.ExpectExec(saveBookingSQL).
		WithArgs(bookingArgs(b)...).
		WillReturnError(boom)

	err := repo.Save(context.Background(), b)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrStaleBooking)
}

func TestFindByPNR_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE pnr=\$1`).
		WithArgs("PNR404").
		WillReturnRows(pgxmock.NewRows([]string{"booking_id"}))

	_, err := repo.FindByPNR(context.Background(), "PNR404")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestMigrate(t *testing.T) {
	mock := newMock(t)
	for range []string{createFlightsTable, createBookingsTable, createBookingsEmailIndex} {
		mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	assert.NoError(t, Migrate(context.Background(), mock, logger.Discard()))
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS flights`).WillReturnError(errors.New("permission denied"))

	err := Migrate(context.Background(), mock, logger.Discard())
	assert.ErrorContains(t, err, "migration 1 failed")
}

func TestMigrationsAreIdempotent(t *testing.T) {
	for _, stmt := range []string{createFlightsTable, createBookingsTable, createBookingsEmailIndex} {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}
