package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/gateway"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	bookUnavailableMsg   = "flight service unavailable, try again later"
	cancelUnavailableMsg = "flight service unavailable, cancellation failed"
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	GetHistory(ctx context.Context, email string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, pnr string) (*domain.Booking, error)
}

type FlightGateway interface {
	GetFlight(ctx context.Context, flightID string) (*gateway.FlightInfo, error)
	ReserveSeats(ctx context.Context, flightID string, seats []string) error
	ReleaseSeats(ctx context.Context, flightID string, seats []string) error
}

// EventPublisher delivers booking events on a best-effort basis; it never fails.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent)
}

type BookFlightInput struct {
	FlightID       string
	UserEmail      string
	UserName       string
	NumberOfSeats  int
	SelectedSeats  []string
	MealPreference domain.MealPreference
	JourneyDate    time.Time
	Passengers     []domain.Passenger
}

type BookingService struct {
	bookings            repository.BookingRepository
	flights             FlightGateway
	publisher           EventPublisher
	log                 *logrus.Logger
	now                 func() time.Time
	newPNR              func(time.Time) string
	compensationTimeout time.Duration
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithPNRGenerator(gen func(time.Time) string) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

// WithCompensationTimeout bounds the seat release issued after a failed save.
func WithCompensationTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.compensationTimeout = d
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights FlightGateway,
	publisher EventPublisher,
	log *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:            bookings,
		flights:             flights,
		publisher:           publisher,
		log:                 log,
		now:                 time.Now,
		newPNR:              NewPNR,
		compensationTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// NewPNR returns "PNR", the unix millis of at and six random hex characters.
func NewPNR(at time.Time) string {
	return fmt.Sprintf("PNR%d%s", at.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (booking *domain.Booking, err error) {
	defer func() { s.observe("book", err) }()

	now := s.now()
	if err := validateBooking(input, now); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetFlight(ctx, input.FlightID)
	if err != nil {
		return nil, fallback(err, bookUnavailableMsg)
	}
	if flight.AvailableSeats < input.NumberOfSeats {
		return nil, apperr.Validation("insufficient seats available")
	}

	if err := s.flights.ReserveSeats(ctx, input.FlightID, input.SelectedSeats); err != nil {
		return nil, fallback(err, bookUnavailableMsg)
	}

	booking = &domain.Booking{
		BookingID:      uuid.NewString(),
		PNR:            s.newPNR(now),
		FlightID:       input.FlightID,
		UserEmail:      input.UserEmail,
		UserName:       input.UserName,
		NumberOfSeats:  input.NumberOfSeats,
		SelectedSeats:  slices.Clone(input.SelectedSeats),
		MealPreference: input.MealPreference,
		JourneyDate:    domain.Date(input.JourneyDate),
		TotalPrice:     flight.Price * float64(input.NumberOfSeats),
		Passengers:     slices.Clone(input.Passengers),
		Status:         domain.BookingStatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.bookings.Save(ctx, booking); err != nil {
		return nil, s.compensate(ctx, booking, err)
	}

	s.log.WithFields(logrus.Fields{"pnr": booking.PNR, "flight_id": booking.FlightID, "seats": booking.SelectedSeats}).Info("booking confirmed")
	s.publish(ctx, booking)
	return booking, nil
}

// compensate releases the seats reserved for a booking that could not be saved.
// It runs detached from ctx so a caller that went away still frees the seats.
func (s *BookingService) compensate(ctx context.Context, booking *domain.Booking, saveErr error) error {
	entry := s.log.WithFields(logrus.Fields{
		"pnr":       booking.PNR,
		"flight_id": booking.FlightID,
		"seats":     booking.SelectedSeats,
	})
	entry.WithError(saveErr).Warn("saving booking failed, releasing reserved seats")

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	if err := s.flights.ReleaseSeats(releaseCtx, booking.FlightID, booking.SelectedSeats); err != nil {
		entry.WithError(err).Error("seats reserved for an unsaved booking could not be released, inventory needs reconciliation")
		return apperr.CriticalInconsistency(
			fmt.Sprintf("booking for flight %s could not be saved and seats %s remain reserved", booking.FlightID, strings.Join(booking.SelectedSeats, ",")),
			errors.Join(saveErr, err),
		)
	}
	return apperr.Service("failed to save booking", saveErr)
}

func (s *BookingService) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	booking, err := s.bookings.FindByPNR(ctx, pnr)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return nil, apperr.NotFound("booking not found with pnr: %s", pnr)
	}
	if err != nil {
		return nil, apperr.Service("failed to load booking", err)
	}
	return booking, nil
}

func (s *BookingService) GetHistory(ctx context.Context, email string) ([]domain.Booking, error) {
	bookings, err := s.bookings.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Service("failed to load booking history", err)
	}
	return bookings, nil
}

// CancelBooking marks the booking cancelled and then frees its seats. When the
// release fails the cancelled booking is returned together with the error.
func (s *BookingService) CancelBooking(ctx context.Context, pnr string) (booking *domain.Booking, err error) {
	defer func() { s.observe("cancel", err) }()

	current, err := s.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return nil, apperr.NotFound("booking %s is already cancelled", pnr)
	}

	now := s.now()
	if domain.DaysBetween(now, current.JourneyDate) <= 0 {
		return nil, apperr.Validation("journey date has passed, booking %s cannot be cancelled", pnr)
	}

	cancelled := *current
	cancelled.Status = domain.BookingStatusCancelled
	cancelled.UpdatedAt = now
	if err := s.bookings.Save(ctx, &cancelled); err != nil {
		if errors.Is(err, repository.ErrStaleBooking) {
			return nil, apperr.NotFound("booking %s is already cancelled", pnr)
		}
		return nil, apperr.Service("failed to cancel booking", err)
	}

	entry := s.log.WithFields(logrus.Fields{"pnr": pnr, "flight_id": cancelled.FlightID, "seats": cancelled.SelectedSeats})
	s.publish(ctx, &cancelled)

	if err := s.flights.ReleaseSeats(ctx, cancelled.FlightID, cancelled.SelectedSeats); err != nil {
		entry.WithError(err).Error("booking cancelled but seats were not released")
		return &cancelled, apperr.Unavailable(cancelUnavailableMsg, err)
	}

	entry.Info("booking cancelled")
	return &cancelled, nil
}

func (s *BookingService) publish(ctx context.Context, booking *domain.Booking) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, domain.NewBookingEvent(booking, s.now()))
}

func (s *BookingService) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.BookingOperations.WithLabelValues(operation, outcome).Inc()
}

// fallback keeps business answers from the flight service and turns every
// other failure into the caller-facing unavailable error.
func fallback(err error, msg string) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound:
		return err
	}
	return apperr.Unavailable(msg, err)
}

func validateBooking(input BookFlightInput, now time.Time) error {
	if input.NumberOfSeats <= 0 {
		return apperr.Validation("number of seats must be positive")
	}
	if strings.TrimSpace(input.UserEmail) == "" {
		return apperr.Validation("user email is required")
	}
	if len(input.Passengers) != input.NumberOfSeats {
		return apperr.Validation("passenger count %d does not match number of seats %d", len(input.Passengers), input.NumberOfSeats)
	}
	if len(input.SelectedSeats) != input.NumberOfSeats {
		return apperr.Validation("selected seat count %d does not match number of seats %d", len(input.SelectedSeats), input.NumberOfSeats)
	}
	seen := make(map[string]struct{}, len(input.SelectedSeats))
	for _, seat := range input.SelectedSeats {
		if _, dup := seen[seat]; dup {
			return apperr.Validation("seat %s selected more than once", seat)
		}
		seen[seat] = struct{}{}
	}
	if domain.DaysBetween(now, input.JourneyDate) < 0 {
		return apperr.Validation("journey date must be today or later")
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
