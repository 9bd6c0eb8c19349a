package events

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, key string, payload []byte) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

func (m *MockTransport) Close() error {
	return m.Called().Error(0)
}

func bufferedLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	return log, &buf
}

func sampleEvent() domain.BookingEvent {
	return domain.BookingEvent{
		PNR:           "PNR1773133200000abcdef",
		UserEmail:     "jane@example.com",
		UserName:      "Jane",
		FlightID:      "FL123",
		NumberOfSeats: 2,
		TotalPrice:    200,
		Status:        "CONFIRMED",
		Timestamp:     1773133200000,
	}
}

func TestPublish_SendsEncodedEventKeyedByPNR(t *testing.T) {
	log, _ := bufferedLogger()
	transport := &MockTransport{}
	ctx := context.Background()

	var sent []byte
	transport.On("Send", ctx, "PNR1773133200000abcdef", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		sent = args.Get(2).([]byte)
	}).Once()

	NewPublisher(transport, log).Publish(ctx, sampleEvent())

	transport.AssertExpectations(t)
	decoded, err := Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), decoded)
	assert.Contains(t, string(sent), `"bookingStatus":"CONFIRMED"`)
}

func TestPublish_TransportErrorIsLoggedNotReturned(t *testing.T) {
	log, buf := bufferedLogger()
	transport := &MockTransport{}
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	assert.NotPanics(t, func() {
		NewPublisher(transport, log).Publish(context.Background(), sampleEvent())
	})
	assert.Contains(t, buf.String(), "failed to publish booking event")
	assert.Contains(t, buf.String(), "broker down")
}

func TestPublish_WithoutTransport(t *testing.T) {
	log, buf := bufferedLogger()
	p := NewPublisher(nil, log)

	p.Publish(context.Background(), sampleEvent())
	assert.Contains(t, buf.String(), "no event transport configured")
	assert.NoError(t, p.Close())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}
