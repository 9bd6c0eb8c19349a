package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migrate creates the tables used by both services. Statements are idempotent.
func Migrate(ctx context.Context, db DB, log *logrus.Logger) error {
	migrations := []string{
		createFlightsTable,
		createBookingsTable,
		createBookingsEmailIndex,
	}

	for i, migration := range migrations {
		log.WithField("step", i+1).Info("running migration")
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id              TEXT PRIMARY KEY,
    airline_code    TEXT NOT NULL,
    airline_name    TEXT NOT NULL,
    source          TEXT NOT NULL,
    destination     TEXT NOT NULL,
    departure_time  TIMESTAMPTZ NOT NULL,
    arrival_time    TIMESTAMPTZ NOT NULL,
    aircraft        TEXT NOT NULL DEFAULT '',
    price           DOUBLE PRECISION NOT NULL,
    total_seats     INTEGER NOT NULL CHECK (total_seats > 0),
    available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
    occupied_seats  TEXT[] NOT NULL DEFAULT '{}',
    version         BIGINT NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    booking_id      TEXT PRIMARY KEY,
    pnr             TEXT NOT NULL UNIQUE,
    flight_id       TEXT NOT NULL,
    user_email      TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    number_of_seats INTEGER NOT NULL,
    selected_seats  TEXT[] NOT NULL,
    meal_preference TEXT NOT NULL,
    journey_date    DATE NOT NULL,
    total_price     DOUBLE PRECISION NOT NULL,
    passengers      JSONB NOT NULL,
    status          TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);`

const createBookingsEmailIndex = `CREATE INDEX IF NOT EXISTS bookings_user_email_idx ON bookings (user_email);`
