package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmed() domain.BookingEvent {
	return domain.BookingEvent{
		PNR:           "PNR1773133200000abcdef",
		UserEmail:     "jane@example.com",
		UserName:      "Jane",
		FlightID:      "FL123",
		NumberOfSeats: 2,
		TotalPrice:    200,
		Status:        "CONFIRMED",
	}
}

func TestCompose_Confirmed(t *testing.T) {
	msg, ok := Compose(confirmed())
	require.True(t, ok)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Flight Booking Confirmed - PNR: PNR1773133200000abcdef", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Jane,")
	assert.Contains(t, msg.Body, "Flight ID: FL123")
	assert.Contains(t, msg.Body, "Seats: 2")
	assert.Contains(t, msg.Body, "Total Price: $200.00")
}

func TestCompose_Cancelled(t *testing.T) {
	event := confirmed()
	event.Status = "CANCELLED"

	msg, ok := Compose(event)
	require.True(t, ok)
	assert.Contains(t, msg.Subject, "Cancelled")
	assert.Contains(t, msg.Body, "has been cancelled")
}

func TestSend_SkipsInvalidAddress(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	event := confirmed()
	event.UserEmail = "not-an-address"

	_, ok := Compose(event)
	assert.False(t, ok)
	assert.NoError(t, NewSender(log).Send(context.Background(), event))
	assert.Contains(t, buf.String(), "invalid email address")
}

func TestSend_LogsNotification(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	require.NoError(t, NewSender(log).Send(context.Background(), confirmed()))
	assert.Contains(t, buf.String(), "booking notification sent")
	assert.Contains(t, buf.String(), "PNR1773133200000abcdef")
}
