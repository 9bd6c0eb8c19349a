package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type InventoryUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error)
	ReleaseSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetFlight(ctx context.Context, id string) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
	Invalidate(ctx context.Context, id string) error
}

type AddFlightInput struct {
	AirlineCode   string    `json:"airlineCode" binding:"required"`
	AirlineName   string    `json:"airlineName" binding:"required"`
	Source        string    `json:"source" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departureTime" binding:"required"`
	ArrivalTime   time.Time `json:"arrivalTime" binding:"required"`
	Aircraft      string    `json:"aircraft"`
	Price         float64   `json:"price" binding:"required,gt=0"`
	TotalSeats    int       `json:"totalSeats" binding:"required,gt=0"`
}

type InventoryService struct {
	repo       repository.FlightRepository
	cache      FlightCache
	maxRetries int
	log        *logrus.Logger
	// epochs counts invalidations per flight id (*atomic.Uint64).
	epochs sync.Map
}

func NewInventoryService(repo repository.FlightRepository, cache FlightCache, maxRetries int, log *logrus.Logger) *InventoryService {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &InventoryService{repo: repo, cache: cache, maxRetries: maxRetries, log: log}
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Service("list flights", err)
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *InventoryService) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlight(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	epoch := s.epoch(id)
	flight, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if s.epoch(id) != epoch {
			// row may predate a mutation that already invalidated the cache
			s.log.WithField("flight_id", id).Debug("flight changed while loading, cache fill skipped")
			return flight, nil
		}
		_ = s.cache.SetFlight(ctx, flight)
	}
	return flight, nil
}

func (s *InventoryService) AddFlight(ctx context.Context, input AddFlightInput) (*domain.Flight, error) {
	if input.TotalSeats <= 0 {
		return nil, apperr.Validation("total seats must be positive")
	}
	if input.Price <= 0 {
		return nil, apperr.Validation("price must be positive")
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, apperr.Validation("arrival time must be after departure time")
	}

	flight := &domain.Flight{
		ID:             uuid.NewString(),
		AirlineCode:    input.AirlineCode,
		AirlineName:    input.AirlineName,
		Source:         input.Source,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		Aircraft:       input.Aircraft,
		Price:          input.Price,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		OccupiedSeats:  []string{},
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, apperr.Service("create flight", err)
	}
	s.invalidate(ctx, flight.ID)

	s.log.WithFields(logrus.Fields{"flight_id": flight.ID, "total_seats": flight.TotalSeats}).Info("flight inventory added")
	return flight, nil
}

// ReserveSeats occupies all requested seats or none of them.
func (s *InventoryService) ReserveSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error) {
	if len(seats) == 0 {
		return nil, apperr.Validation("no seats requested")
	}
	if dup, ok := firstDuplicate(seats); ok {
		return nil, apperr.Validation("seat %s requested more than once", dup)
	}

	flight, err := s.mutate(ctx, "reserve", flightID, func(f *domain.Flight, occupied domain.SeatSet) error {
		for _, seat := range seats {
			if _, err := domain.SeatIndex(seat, f.TotalSeats); err != nil {
				return apperr.Validation("%s", err.Error())
			}
		}
		for _, seat := range seats {
			if occupied.Has(seat) {
				return apperr.Validation("seat %s is already booked, please select another seat", seat)
			}
		}
		if f.TotalSeats-len(occupied) < len(seats) {
			return apperr.Validation("not enough seats available")
		}
		for _, seat := range seats {
			occupied[seat] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seats": seats, "available": flight.AvailableSeats}).Info("seats reserved")
	return flight, nil
}

// ReleaseSeats frees the given seats. Seats that are not occupied are ignored
// so a repeated release completes.
func (s *InventoryService) ReleaseSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error) {
	flight, err := s.mutate(ctx, "release", flightID, func(_ *domain.Flight, occupied domain.SeatSet) error {
		for _, seat := range seats {
			delete(occupied, seat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"flight_id": flightID, "seats": seats, "available": flight.AvailableSeats}).Info("seats released")
	return flight, nil
}

// mutate applies change to a fresh copy of the occupied set and writes it back
// guarded by the version read, retrying on concurrent modification.
func (s *InventoryService) mutate(ctx context.Context, op, flightID string, change func(*domain.Flight, domain.SeatSet) error) (*domain.Flight, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		flight, err := s.load(ctx, flightID)
		if err != nil {
			return nil, err
		}

		occupied := domain.NewSeatSet(flight.OccupiedSeats)
		if err := change(flight, occupied); err != nil {
			return nil, err
		}

		next := occupied.Slice()
		available := flight.TotalSeats - len(next)
		version, err := s.repo.UpdateSeats(ctx, flightID, flight.Version, next, available)
		switch {
		case err == nil:
			flight.OccupiedSeats = next
			flight.AvailableSeats = available
			flight.Version = version
			s.invalidate(ctx, flightID)
			return flight, nil
		case errors.Is(err, repository.ErrVersionConflict):
			metrics.InventoryConflicts.WithLabelValues(op).Inc()
			s.log.WithFields(logrus.Fields{"flight_id": flightID, "attempt": attempt, "op": op}).Debug("seat inventory changed concurrently, retrying")
			continue
		case errors.Is(err, repository.ErrFlightNotFound):
			return nil, apperr.NotFound("flight not found with id: %s", flightID)
		default:
			return nil, apperr.Service(fmt.Sprintf("%s seats", op), err)
		}
	}
	return nil, apperr.Busy("seat inventory is busy, try again", repository.ErrVersionConflict)
}

func (s *InventoryService) load(ctx context.Context, id string) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrFlightNotFound) {
		return nil, apperr.NotFound("flight not found with id: %s", id)
	}
	if err != nil {
		return nil, apperr.Service("load flight", err)
	}
	return flight, nil
}

func (s *InventoryService) epoch(id string) uint64 {
	if v, ok := s.epochs.Load(id); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

func (s *InventoryService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	v, _ := s.epochs.LoadOrStore(id, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.WithError(err).WithField("flight_id", id).Warn("flight cache invalidation failed")
	}
}

func firstDuplicate(seats []string) (string, bool) {
	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if _, ok := seen[seat]; ok {
			return seat, true
		}
		seen[seat] = struct{}{}
	}
	return "", false
}

var _ InventoryUseCase = (*InventoryService)(nil)
