package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/events"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/messaging"
	"github.com/Domenick1991/flightbooking/internal/rabbitmq"
	"github.com/sirupsen/logrus"
)

// NewPublisher builds the booking event publisher for the configured
// transport. A broker that cannot be reached leaves the publisher without a
// transport instead of failing startup.
func NewPublisher(cfg *config.Config, log *logrus.Logger) *events.Publisher {
	transport, err := newTransport(cfg, log)
	if err != nil {
		log.WithError(err).WithField("transport", cfg.Events.Transport).Warn("event transport unavailable, booking events will only be logged")
		return events.NewPublisher(nil, log)
	}
	return events.NewPublisher(transport, log)
}

const kafkaCheckTimeout = 3 * time.Second

func newTransport(cfg *config.Config, log *logrus.Logger) (events.Transport, error) {
	switch cfg.Events.Transport {
	case "kafka":
		return newKafkaTransport(cfg.Kafka, kafkaCheckTimeout)
	case "rabbitmq":
		return rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
	case "nats":
		return messaging.NewNATSClient(natsConfig(cfg, "-publisher"), log)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Events.Transport)
	}
}

// newKafkaTransport returns the producer only after a broker answered.
func newKafkaTransport(cfg config.KafkaConfig, timeout time.Duration) (events.Transport, error) {
	producer := kafka.NewProducer(cfg.Brokers, cfg.BookingTopic)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := producer.CheckConnection(ctx); err != nil {
		_ = producer.Close()
		return nil, err
	}
	return producer, nil
}

func natsConfig(cfg *config.Config, suffix string) messaging.Config {
	return messaging.Config{
		URL:       cfg.NATS.URL,
		ClusterID: cfg.NATS.ClusterID,
		ClientID:  cfg.NATS.ClientID + suffix,
		Subject:   cfg.NATS.Subject,
	}
}

// ConsumeFunc blocks delivering raw event payloads to handler until ctx is done.
type ConsumeFunc func(ctx context.Context, handler func(context.Context, []byte) error) error

// NewConsumer returns the consumer loop for the configured transport and a
// function releasing its resources.
func NewConsumer(cfg *config.Config, log *logrus.Logger) (ConsumeFunc, func() error, error) {
	switch cfg.Events.Transport {
	case "kafka":
		c := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingTopic)
		return c.Consume, c.Close, nil
	case "rabbitmq":
		c := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		return c.Consume, func() error { return nil }, nil
	case "nats":
		nc, err := messaging.NewNATSClient(natsConfig(cfg, "-worker"), log)
		if err != nil {
			return nil, nil, err
		}
		consume := func(ctx context.Context, handler func(context.Context, []byte) error) error {
			return nc.Consume(ctx, "notifications", handler)
		}
		return consume, nc.Close, nil
	default:
		return nil, nil, fmt.Errorf("event transport %q cannot be consumed", cfg.Events.Transport)
	}
}
