package flightsrpc

type Flight struct {
	ID             string  `json:"flightId"`
	AirlineCode    string  `json:"airlineCode,omitempty"`
	AirlineName    string  `json:"airlineName,omitempty"`
	Source         string  `json:"source,omitempty"`
	Destination    string  `json:"destination,omitempty"`
	DepartureTime  string  `json:"departureTime,omitempty"`
	ArrivalTime    string  `json:"arrivalTime,omitempty"`
	Aircraft       string  `json:"aircraft,omitempty"`
	Price          float64 `json:"price"`
	TotalSeats     int32   `json:"totalSeats"`
	AvailableSeats int32   `json:"availableSeats"`
}

type GetFlightRequest struct {
	FlightID string `json:"flightId"`
}

type GetFlightResponse struct {
	Flight *Flight `json:"flight"`
}

type SeatsRequest struct {
	FlightID string   `json:"flightId"`
	Seats    []string `json:"seats"`
}

type SeatsResponse struct {
	AvailableSeats int32 `json:"availableSeats"`
}
