package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SeatsPerRow is the cabin width: seats A through F.
const SeatsPerRow = 6

type Flight struct {
	ID             string    `json:"flightId"`
	AirlineCode    string    `json:"airlineCode"`
	AirlineName    string    `json:"airlineName"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	Aircraft       string    `json:"aircraft"`
	Price          float64   `json:"price"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	OccupiedSeats  []string  `json:"occupiedSeats"`
	Version        int64     `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SeatIndex maps a seat code such as "12C" onto its zero-based position in
// the cabin. It fails for malformed codes and codes past totalSeats.
func SeatIndex(code string, totalSeats int) (int, error) {
	if len(code) < 2 {
		return 0, fmt.Errorf("invalid seat code %q", code)
	}
	letter := code[len(code)-1]
	if letter < 'A' || letter >= 'A'+SeatsPerRow {
		return 0, fmt.Errorf("invalid seat code %q", code)
	}
	row, err := strconv.Atoi(code[:len(code)-1])
	if err != nil || row < 1 {
		return 0, fmt.Errorf("invalid seat code %q", code)
	}
	idx := (row-1)*SeatsPerRow + int(letter-'A')
	if idx >= totalSeats {
		return 0, fmt.Errorf("seat %s does not exist on this aircraft", code)
	}
	return idx, nil
}

// SeatSet is the authoritative occupied-seat set of a flight.
type SeatSet map[string]struct{}

func NewSeatSet(seats []string) SeatSet {
	s := make(SeatSet, len(seats))
	for _, seat := range seats {
		s[seat] = struct{}{}
	}
	return s
}

func (s SeatSet) Has(seat string) bool {
	_, ok := s[seat]
	return ok
}

// Slice returns the seats ordered by cabin position.
func (s SeatSet) Slice() []string {
	out := make([]string, 0, len(s))
	for seat := range s {
		out = append(out, seat)
	}
	slices.SortFunc(out, func(a, b string) int {
		ia, _ := SeatIndex(a, math.MaxInt)
		ib, _ := SeatIndex(b, math.MaxInt)
		if ia != ib {
			return cmp.Compare(ia, ib)
		}
		return strings.Compare(a, b)
	})
	return out
}
