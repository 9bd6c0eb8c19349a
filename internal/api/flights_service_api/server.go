package flights_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
)

// Server exposes the seat inventory to the booking service over gRPC.
type Server struct {
	inventory inventory.InventoryUseCase
}

func NewServer(inventory inventory.InventoryUseCase) *Server {
	return &Server{inventory: inventory}
}

func (s *Server) GetFlight(ctx context.Context, req *flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error) {
	flight, err := s.inventory.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, apperr.ToStatus(err)
	}
	return &flightsrpc.GetFlightResponse{Flight: toRPCFlight(flight)}, nil
}

func (s *Server) ReserveSeats(ctx context.Context, req *flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
	flight, err := s.inventory.ReserveSeats(ctx, req.FlightID, req.Seats)
	if err != nil {
		return nil, apperr.ToStatus(err)
	}
	return &flightsrpc.SeatsResponse{AvailableSeats: int32(flight.AvailableSeats)}, nil
}

func (s *Server) ReleaseSeats(ctx context.Context, req *flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
	flight, err := s.inventory.ReleaseSeats(ctx, req.FlightID, req.Seats)
	if err != nil {
		return nil, apperr.ToStatus(err)
	}
	return &flightsrpc.SeatsResponse{AvailableSeats: int32(flight.AvailableSeats)}, nil
}

func toRPCFlight(f *domain.Flight) *flightsrpc.Flight {
	if f == nil {
		return nil
	}
	return &flightsrpc.Flight{
		ID:             f.ID,
		AirlineCode:    f.AirlineCode,
		AirlineName:    f.AirlineName,
		Source:         f.Source,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:    f.ArrivalTime.Format(time.RFC3339),
		Aircraft:       f.Aircraft,
		Price:          f.Price,
		TotalSeats:     int32(f.TotalSeats),
		AvailableSeats: int32(f.AvailableSeats),
	}
}

var _ flightsrpc.FlightInventoryServer = (*Server)(nil)
