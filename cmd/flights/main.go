package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	flightsapi "github.com/Domenick1991/flightbooking/internal/api/flights_service_api"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/flightsrpc"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
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

	inventoryService := inventory.NewInventoryService(
		repository.NewFlightRepository(pool),
		cache.NewRedisCache(cfg.Redis),
		cfg.Inventory.MaxCASRetries,
		log,
	)

	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(bootstrap.UnaryLogger(log)))
	flightsrpc.RegisterFlightInventoryServer(grpcSrv, flightsapi.NewServer(inventoryService))

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: bootstrap.NewFlightRouter(log, api.NewFlightHandler(inventoryService)),
	}

	if err := bootstrap.Run(ctx, log, srv, grpcSrv, cfg.GRPC.Address); err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}
