// Package events announces booking lifecycle changes on a message transport.
// Delivery is at most once: failures are logged and dropped.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Transport hands one encoded message to a broker.
type Transport interface {
	Send(ctx context.Context, key string, payload []byte) error
	Close() error
}

type Publisher struct {
	transport Transport
	log       *logrus.Logger
}

// NewPublisher returns a publisher over transport. A nil transport is allowed
// and turns every Publish into a log line.
func NewPublisher(transport Transport, log *logrus.Logger) *Publisher {
	return &Publisher{transport: transport, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) {
	entry := p.log.WithFields(logrus.Fields{"pnr": event.PNR, "status": event.Status})
	if p.transport == nil {
		metrics.EventsPublished.WithLabelValues("skipped").Inc()
		entry.Info("no event transport configured, booking event not sent")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		entry.WithError(err).Error("failed to encode booking event")
		return
	}
	if err := p.transport.Send(ctx, event.PNR, payload); err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		entry.WithError(err).Error("failed to publish booking event")
		return
	}
	metrics.EventsPublished.WithLabelValues("sent").Inc()
	entry.Debug("booking event published")
}

func (p *Publisher) Close() error {
	if p.transport == nil {
		return nil
	}
	return p.transport.Close()
}

// Decode parses a message produced by Publish.
func Decode(payload []byte) (domain.BookingEvent, error) {
	var event domain.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.BookingEvent{}, fmt.Errorf("failed to decode booking event: %w", err)
	}
	return event, nil
}
