// Package gateway is the booking service's guarded client for the flight
// inventory service.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FlightInfo is what the booking flow needs to know about a flight.
type FlightInfo struct {
	ID             string
	Price          float64
	TotalSeats     int
	AvailableSeats int
}

type FlightGateway struct {
	client  flightsrpc.FlightInventoryClient
	breaker *breaker.Breaker
	timeout time.Duration
	log     *logrus.Logger
}

func NewFlightGateway(client flightsrpc.FlightInventoryClient, cb *breaker.Breaker, timeout time.Duration, log *logrus.Logger) *FlightGateway {
	return &FlightGateway{client: client, breaker: cb, timeout: timeout, log: log}
}

// NewBreaker builds the breaker guarding the flight service from config.
// Only transport-level failures count against it.
func NewBreaker(cfg config.BreakerConfig, log *logrus.Logger) *breaker.Breaker {
	metrics.BreakerState.WithLabelValues("flight-service").Set(float64(breaker.StateClosed))
	return breaker.New(breaker.Settings{
		Name:             "flight-service",
		FailureThreshold: cfg.FailureThreshold,
		Window:           cfg.Window,
		Cooldown:         cfg.Cooldown,
		HalfOpenMaxCalls: cfg.HalfOpenMaxCalls,
		IsFailure:        IsTransportFailure,
		OnStateChange: func(name string, from, to breaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			entry := log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()})
			if to == breaker.StateOpen {
				entry.Error("circuit breaker opened")
				return
			}
			entry.Warn("circuit breaker state changed")
		},
	})
}

func (g *FlightGateway) GetFlight(ctx context.Context, flightID string) (*FlightInfo, error) {
	var resp *flightsrpc.GetFlightResponse
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		resp, err = g.client.GetFlight(ctx, &flightsrpc.GetFlightRequest{FlightID: flightID})
		return err
	})
	if err != nil {
		return nil, g.translate("get flight", flightID, err)
	}
	if resp.Flight == nil {
		return nil, apperr.NotFound("flight not found")
	}
	return &FlightInfo{
		ID:             resp.Flight.ID,
		Price:          resp.Flight.Price,
		TotalSeats:     int(resp.Flight.TotalSeats),
		AvailableSeats: int(resp.Flight.AvailableSeats),
	}, nil
}

func (g *FlightGateway) ReserveSeats(ctx context.Context, flightID string, seats []string) error {
	err := g.call(ctx, func(ctx context.Context) error {
		_, err := g.client.ReserveSeats(ctx, &flightsrpc.SeatsRequest{FlightID: flightID, Seats: seats})
		return err
	})
	if err != nil {
		return g.translate("reserve seats", flightID, err)
	}
	return nil
}

func (g *FlightGateway) ReleaseSeats(ctx context.Context, flightID string, seats []string) error {
	err := g.call(ctx, func(ctx context.Context) error {
		_, err := g.client.ReleaseSeats(ctx, &flightsrpc.SeatsRequest{FlightID: flightID, Seats: seats})
		return err
	})
	if err != nil {
		return g.translate("release seats", flightID, err)
	}
	return nil
}

func (g *FlightGateway) call(ctx context.Context, fn func(context.Context) error) error {
	return g.breaker.Execute(func() error {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
}

// translate maps remote outcomes onto the error taxonomy: business answers
// keep their kind, everything else means the flight service is unavailable.
func (g *FlightGateway) translate(op, flightID string, err error) error {
	if errors.Is(err, breaker.ErrOpen) {
		return apperr.Unavailable("flight service unavailable", err)
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return apperr.NotFound("%s", st.Message())
	case codes.FailedPrecondition, codes.InvalidArgument, codes.AlreadyExists:
		return apperr.Validation("%s", st.Message())
	case codes.Aborted:
		g.log.WithFields(logrus.Fields{"op": op, "flight_id": flightID}).Info("seat inventory busy")
		return apperr.Unavailable("flight service unavailable", err)
	}
	g.log.WithError(err).WithFields(logrus.Fields{"op": op, "flight_id": flightID, "code": st.Code().String()}).Warn("flight service call failed")
	return apperr.Unavailable("flight service unavailable", err)
}

// IsTransportFailure reports whether err says the flight service is unhealthy
// rather than giving a business answer.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.NotFound, codes.FailedPrecondition, codes.InvalidArgument, codes.AlreadyExists:
		return false
	case codes.Aborted:
		// contention on one flight
		return false
	case codes.Canceled:
		// caller gave up; says nothing about the remote side
		return false
	}
	return true
}
