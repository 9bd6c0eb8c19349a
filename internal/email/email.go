package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender turns booking events into customer notifications. Delivery itself is
// not wired to a mail server; composed messages are logged.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

// Compose builds the notification for event. It reports false when the
// recipient address is unusable.
func Compose(event domain.BookingEvent) (Message, bool) {
	if !strings.Contains(event.UserEmail, "@") {
		return Message{}, false
	}

	subject := "Flight Booking Confirmed - PNR: " + event.PNR
	headline := "Your flight booking is confirmed!"
	if event.Status == string(domain.BookingStatusCancelled) {
		subject = "Flight Booking Cancelled - PNR: " + event.PNR
		headline = "Your flight booking has been cancelled."
	}

	body := fmt.Sprintf("Dear %s,\n\n%s\nPNR: %s\nFlight ID: %s\nSeats: %d\nTotal Price: $%.2f\n\nHave a safe journey!\n",
		event.UserName, headline, event.PNR, event.FlightID, event.NumberOfSeats, event.TotalPrice)

	return Message{To: event.UserEmail, Subject: subject, Body: body}, true
}

func (s *Sender) Send(ctx context.Context, event domain.BookingEvent) error {
	msg, ok := Compose(event)
	if !ok {
		s.log.WithField("email", event.UserEmail).Warn("invalid email address, skipping notification")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"pnr":     event.PNR,
	}).Info("booking notification sent")
	return nil
}
