package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	// Save inserts a new booking or persists a status change of a booking
	// that is still CONFIRMED in storage; otherwise it fails with ErrStaleBooking.
	Save(ctx context.Context, booking *domain.Booking) error
	FindByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `booking_id, pnr, flight_id, user_email, user_name, number_of_seats, selected_seats, meal_preference, journey_date, total_price, passengers, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.BookingID, &b.PNR, &b.FlightID, &b.UserEmail, &b.UserName, &b.NumberOfSeats, &b.SelectedSeats, &b.MealPreference, &b.JourneyDate, &b.TotalPrice, &b.Passengers, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	cmd, err := r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (booking_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		WHERE bookings.status = 'CONFIRMED'`,
		b.BookingID, b.PNR, b.FlightID, b.UserEmail, b.UserName, b.NumberOfSeats, b.SelectedSeats, b.MealPreference, b.JourneyDate, b.TotalPrice, b.Passengers, b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleBooking
	}
	return nil
}

func (r *PGBookingRepository) FindByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) FindByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_email=$1`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
