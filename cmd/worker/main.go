package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/logger"
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

	consume, closeConsumer, err := bootstrap.NewConsumer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("create event consumer")
	}
	defer func() { _ = closeConsumer() }()

	sender := email.NewSender(log)

	log.WithField("transport", cfg.Events.Transport).Info("notification worker started")
	err = consume(ctx, func(ctx context.Context, payload []byte) error {
		event, err := events.Decode(payload)
		if err != nil {
			log.WithError(err).Warn("dropping undecodable booking event")
			return nil
		}
		log.WithField("pnr", event.PNR).Info("received booking event")
		return sender.Send(ctx, event)
	})
	if err != nil {
		log.WithError(err).Error("consumer stopped")
	}
	log.Info("notification worker stopped")
}
