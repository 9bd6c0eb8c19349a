package gateway

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	getFlight func(*flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error)
	reserve   func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error)
	release   func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error)
	calls     atomic.Int32
}

func (s *stubServer) GetFlight(_ context.Context, in *flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error) {
	s.calls.Add(1)
	return s.getFlight(in)
}

func (s *stubServer) ReserveSeats(_ context.Context, in *flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
	s.calls.Add(1)
	return s.reserve(in)
}

func (s *stubServer) ReleaseSeats(_ context.Context, in *flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
	s.calls.Add(1)
	return s.release(in)
}

func startServer(t *testing.T, srv flightsrpc.FlightInventoryServer) flightsrpc.FlightInventoryClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	flightsrpc.RegisterFlightInventoryServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := flightsrpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return flightsrpc.NewFlightInventoryClient(conn)
}

func newGateway(t *testing.T, srv *stubServer, threshold int) *FlightGateway {
	t.Helper()
	log := logger.Discard()
	cb := NewBreaker(config.BreakerConfig{
		FailureThreshold: threshold,
		Window:           time.Minute,
		Cooldown:         time.Hour,
		HalfOpenMaxCalls: 1,
	}, log)
	return NewFlightGateway(startServer(t, srv), cb, time.Second, log)
}

func TestGetFlight(t *testing.T) {
	srv := &stubServer{getFlight: func(in *flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error) {
		return &flightsrpc.GetFlightResponse{Flight: &flightsrpc.Flight{
			ID: in.FlightID, Price: 100, TotalSeats: 60, AvailableSeats: 58,
		}}, nil
	}}
	gw := newGateway(t, srv, 3)

	f, err := gw.GetFlight(context.Background(), "FL123")
	require.NoError(t, err)
	assert.Equal(t, &FlightInfo{ID: "FL123", Price: 100, TotalSeats: 60, AvailableSeats: 58}, f)
}

func TestGetFlight_NotFoundDoesNotTrip(t *testing.T) {
	srv := &stubServer{getFlight: func(*flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error) {
		return nil, status.Error(codes.NotFound, "flight not found with id: FL404")
	}}
	gw := newGateway(t, srv, 1)

	for i := 0; i < 3; i++ {
		_, err := gw.GetFlight(context.Background(), "FL404")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, "flight not found with id: FL404", apperr.Message(err))
	}
	assert.Equal(t, breaker.StateClosed, gw.breaker.State())
	assert.Equal(t, int32(3), srv.calls.Load())
}

func TestReserveSeats_ConflictIsValidation(t *testing.T) {
	srv := &stubServer{reserve: func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
		return nil, status.Error(codes.FailedPrecondition, "seat 1A is already booked, please select another seat")
	}}
	gw := newGateway(t, srv, 1)

	err := gw.ReserveSeats(context.Background(), "FL123", []string{"1A"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "seat 1A is already booked, please select another seat", apperr.Message(err))
	assert.Equal(t, breaker.StateClosed, gw.breaker.State())
}

func TestReserveSeats_RemoteFailuresOpenBreaker(t *testing.T) {
	srv := &stubServer{reserve: func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
		return nil, status.Error(codes.Internal, "database is down")
	}}
	gw := newGateway(t, srv, 2)

	for i := 0; i < 2; i++ {
		err := gw.ReserveSeats(context.Background(), "FL123", []string{"1A"})
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	}
	assert.Equal(t, breaker.StateOpen, gw.breaker.State())

	err := gw.ReserveSeats(context.Background(), "FL123", []string{"1A"})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, int32(2), srv.calls.Load())
}

func TestReserveSeats_BusyInventoryDoesNotTrip(t *testing.T) {
	srv := &stubServer{
		reserve: func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
			return nil, apperr.ToStatus(apperr.Busy("seat inventory is busy, try again", errors.New("version conflict")))
		},
		getFlight: func(in *flightsrpc.GetFlightRequest) (*flightsrpc.GetFlightResponse, error) {
			return &flightsrpc.GetFlightResponse{Flight: &flightsrpc.Flight{
				ID: in.FlightID, Price: 100, TotalSeats: 60, AvailableSeats: 60,
			}}, nil
		},
	}
	gw := newGateway(t, srv, 3)

	for i := 0; i < 3; i++ {
		err := gw.ReserveSeats(context.Background(), "HOT", []string{"1A"})
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
		assert.NotErrorIs(t, err, breaker.ErrOpen)
	}
	assert.Equal(t, breaker.StateClosed, gw.breaker.State())

	info, err := gw.GetFlight(context.Background(), "OTHER")
	require.NoError(t, err)
	assert.Equal(t, "OTHER", info.ID)
}

func TestReleaseSeats_TimeoutIsUnavailable(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	srv := &stubServer{release: func(*flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
		<-block
		return &flightsrpc.SeatsResponse{}, nil
	}}
	gw := newGateway(t, srv, 5)
	gw.timeout = 50 * time.Millisecond

	err := gw.ReleaseSeats(context.Background(), "FL123", []string{"1A"})
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestReleaseSeats(t *testing.T) {
	var got *flightsrpc.SeatsRequest
	srv := &stubServer{release: func(in *flightsrpc.SeatsRequest) (*flightsrpc.SeatsResponse, error) {
		got = in
		return &flightsrpc.SeatsResponse{AvailableSeats: 60}, nil
	}}
	gw := newGateway(t, srv, 5)

	require.NoError(t, gw.ReleaseSeats(context.Background(), "FL123", []string{"1A", "1B"}))
	assert.Equal(t, "FL123", got.FlightID)
	assert.Equal(t, []string{"1A", "1B"}, got.Seats)
}

func TestIsTransportFailure(t *testing.T) {
	assert.False(t, IsTransportFailure(nil))
	assert.False(t, IsTransportFailure(status.Error(codes.NotFound, "x")))
	assert.False(t, IsTransportFailure(status.Error(codes.FailedPrecondition, "x")))
	assert.False(t, IsTransportFailure(status.Error(codes.Aborted, "x")))
	assert.True(t, IsTransportFailure(status.Error(codes.Unavailable, "x")))
	assert.True(t, IsTransportFailure(status.Error(codes.DeadlineExceeded, "x")))
}
