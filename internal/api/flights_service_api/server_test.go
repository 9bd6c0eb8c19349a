package flights_service_api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/gateway"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockInventory) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockInventory) AddFlight(ctx context.Context, input inventory.AddFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockInventory) ReserveSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error) {
	args := m.Called(ctx, flightID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockInventory) ReleaseSeats(ctx context.Context, flightID string, seats []string) (*domain.Flight, error) {
	args := m.Called(ctx, flightID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func dial(t *testing.T, inv inventory.InventoryUseCase) flightsrpc.FlightInventoryClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	flightsrpc.RegisterFlightInventoryServer(srv, NewServer(inv))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := flightsrpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return flightsrpc.NewFlightInventoryClient(conn)
}

func TestGetFlight(t *testing.T) {
	inv := &MockInventory{}
	inv.On("GetFlight", mock.Anything, "FL123").Return(&domain.Flight{
		ID: "FL123", AirlineCode: "AI", Price: 100, TotalSeats: 60, AvailableSeats: 58,
		DepartureTime: time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC),
	}, nil)

	resp, err := dial(t, inv).GetFlight(context.Background(), &flightsrpc.GetFlightRequest{FlightID: "FL123"})
	require.NoError(t, err)
	assert.Equal(t, "FL123", resp.Flight.ID)
	assert.Equal(t, int32(58), resp.Flight.AvailableSeats)
	assert.Equal(t, "2026-03-20T08:00:00Z", resp.Flight.DepartureTime)
}

func TestErrorsTravelAsStatusCodes(t *testing.T) {
	inv := &MockInventory{}
	inv.On("GetFlight", mock.Anything, "FL404").Return(nil, apperr.NotFound("flight not found with id: %s", "FL404"))
	inv.On("ReserveSeats", mock.Anything, "FL123", []string{"1A"}).
		Return(nil, apperr.Validation("seat %s is already booked, please select another seat", "1A"))
	inv.On("ReleaseSeats", mock.Anything, "FL123", []string{"1A"}).
		Return(nil, apperr.Busy("seat inventory is busy, try again", nil))

	client := dial(t, inv)
	ctx := context.Background()

	_, err := client.GetFlight(ctx, &flightsrpc.GetFlightRequest{FlightID: "FL404"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.ReserveSeats(ctx, &flightsrpc.SeatsRequest{FlightID: "FL123", Seats: []string{"1A"}})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "seat 1A is already booked, please select another seat", status.Convert(err).Message())

	_, err = client.ReleaseSeats(ctx, &flightsrpc.SeatsRequest{FlightID: "FL123", Seats: []string{"1A"}})
	assert.Equal(t, codes.Aborted, status.Code(err))
}

func TestGatewayRoundTrip(t *testing.T) {
	inv := &MockInventory{}
	inv.On("ReserveSeats", mock.Anything, "FL123", []string{"1A", "1B"}).
		Return(&domain.Flight{ID: "FL123", AvailableSeats: 58}, nil).Once()
	inv.On("ReleaseSeats", mock.Anything, "FL123", []string{"9F"}).
		Return(nil, apperr.Validation("seat 9F does not exist on this aircraft")).Once()

	log := logger.Discard()
	gw := gateway.NewFlightGateway(dial(t, inv), gateway.NewBreaker(config.BreakerConfig{FailureThreshold: 1, Cooldown: time.Minute}, log), time.Second, log)

	require.NoError(t, gw.ReserveSeats(context.Background(), "FL123", []string{"1A", "1B"}))

	err := gw.ReleaseSeats(context.Background(), "FL123", []string{"9F"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "seat 9F does not exist on this aircraft", apperr.Message(err))
	inv.AssertExpectations(t)
}
