package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type MealPreference string

const (
	MealVeg    MealPreference = "VEG"
	MealNonVeg MealPreference = "NON_VEG"
)

type Passenger struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
}

type Booking struct {
	BookingID      string
	PNR            string
	FlightID       string
	UserEmail      string
	UserName       string
	NumberOfSeats  int
	SelectedSeats  []string
	MealPreference MealPreference
	JourneyDate    time.Time
	TotalPrice     float64
	Passengers     []Passenger
	Status         BookingStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingEvent is the snapshot announced to the notification transport.
type BookingEvent struct {
	PNR           string  `json:"pnr"`
	UserEmail     string  `json:"userEmail"`
	UserName      string  `json:"userName"`
	FlightID      string  `json:"flightId"`
	NumberOfSeats int     `json:"numberOfSeats"`
	TotalPrice    float64 `json:"totalPrice"`
	Status        string  `json:"bookingStatus"`
	Timestamp     int64   `json:"timestamp"`
}

func NewBookingEvent(b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		PNR:           b.PNR,
		UserEmail:     b.UserEmail,
		UserName:      b.UserName,
		FlightID:      b.FlightID,
		NumberOfSeats: b.NumberOfSeats,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		Timestamp:     at.UnixMilli(),
	}
}

// Date truncates t to its UTC calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from from to to.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}
