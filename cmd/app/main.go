package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/gateway"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool, log); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}

	conn, err := flightsrpc.Dial(cfg.FlightService.Address)
	if err != nil {
		log.WithError(err).Fatal("dial flight service")
	}
	defer conn.Close()

	flightGateway := gateway.NewFlightGateway(
		flightsrpc.NewFlightInventoryClient(conn),
		gateway.NewBreaker(cfg.FlightService.Breaker, log),
		cfg.FlightService.Timeout,
		log,
	)

	publisher := bootstrap.NewPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("close event publisher")
		}
	}()

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		flightGateway,
		publisher,
		log,
	)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: bootstrap.NewBookingRouter(log, api.NewBookingHandler(bookingService), cfg.HTTP.SwaggerDir),
	}

	if err := bootstrap.Run(ctx, log, srv, nil, ""); err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}
