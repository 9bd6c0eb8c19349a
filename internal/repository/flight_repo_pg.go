package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	// UpdateSeats replaces the occupied seat set when the stored version still
	// equals expectedVersion and returns the new version.
	UpdateSeats(ctx context.Context, flightID string, expectedVersion int64, occupied []string, available int) (int64, error)
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, airline_code, airline_name, source, destination, departure_time, arrival_time, aircraft, price, total_seats, available_seats, occupied_seats, version, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.AirlineCode, &f.AirlineName, &f.Source, &f.Destination, &f.DepartureTime, &f.ArrivalTime, &f.Aircraft, &f.Price, &f.TotalSeats, &f.AvailableSeats, &f.OccupiedSeats, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	if f.OccupiedSeats == nil {
		f.OccupiedSeats = []string{}
	}
	return r.db.QueryRow(ctx, `INSERT INTO flights (id, airline_code, airline_name, source, destination, departure_time, arrival_time, aircraft, price, total_seats, available_seats, occupied_seats, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING version, created_at, updated_at`,
		f.ID, f.AirlineCode, f.AirlineName, f.Source, f.Destination, f.DepartureTime, f.ArrivalTime, f.Aircraft, f.Price, f.TotalSeats, f.AvailableSeats, f.OccupiedSeats).
		Scan(&f.Version, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) UpdateSeats(ctx context.Context, flightID string, expectedVersion int64, occupied []string, available int) (int64, error) {
	var version int64
	err := r.db.QueryRow(ctx, `UPDATE flights
		SET occupied_seats = $1, available_seats = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND version = $4
		RETURNING version`, occupied, available, flightID, expectedVersion).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, flightID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrFlightNotFound
		}
		return 0, ErrVersionConflict
	}
	return version, err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
