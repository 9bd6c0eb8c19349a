package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/apperr"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender" binding:"required"`
	Age    int    `json:"age" binding:"gte=0"`
}

type bookFlightRequest struct {
	UserEmail      string             `json:"userEmail" binding:"required,email"`
	UserName       string             `json:"userName" binding:"required"`
	NumberOfSeats  int                `json:"numberOfSeats" binding:"required"`
	Passengers     []passengerRequest `json:"passengers" binding:"required,dive"`
	SelectedSeats  []string           `json:"selectedSeats" binding:"required"`
	MealPreference string             `json:"mealPreference" binding:"required,oneof=VEG NON_VEG"`
	JourneyDate    string             `json:"journeyDate" binding:"required"`
}

type bookingResponse struct {
	BookingID      string             `json:"bookingId"`
	PNR            string             `json:"pnr"`
	FlightID       string             `json:"flightId"`
	UserEmail      string             `json:"userEmail"`
	UserName       string             `json:"userName"`
	NumberOfSeats  int                `json:"numberOfSeats"`
	SelectedSeats  []string           `json:"selectedSeats"`
	MealPreference string             `json:"mealPreference"`
	TotalPrice     float64            `json:"totalPrice"`
	BookingStatus  string             `json:"bookingStatus"`
	JourneyDate    string             `json:"journeyDate"`
	CreatedAt      int64              `json:"createdAt"`
	Passengers     []domain.Passenger `json:"passengers"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/flight/:id", h.book)
	router.GET("/ticket/:pnr", h.ticket)
	router.GET("/history/:email", h.history)
	router.DELETE("/cancel/:pnr", h.cancel)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:      b.BookingID,
		PNR:            b.PNR,
		FlightID:       b.FlightID,
		UserEmail:      b.UserEmail,
		UserName:       b.UserName,
		NumberOfSeats:  b.NumberOfSeats,
		SelectedSeats:  b.SelectedSeats,
		MealPreference: string(b.MealPreference),
		TotalPrice:     b.TotalPrice,
		BookingStatus:  string(b.Status),
		JourneyDate:    b.JourneyDate.Format(dateLayout),
		CreatedAt:      b.CreatedAt.UnixMilli(),
		Passengers:     b.Passengers,
	}
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	journey, err := time.Parse(dateLayout, req.JourneyDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "journeyDate must be formatted as YYYY-MM-DD"})
		return
	}

	passengers := make([]domain.Passenger, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		passengers = append(passengers, domain.Passenger{Name: p.Name, Gender: p.Gender, Age: p.Age})
	}

	created, err := h.service.BookFlight(c.Request.Context(), booking.BookFlightInput{
		FlightID:       c.Param("id"),
		UserEmail:      req.UserEmail,
		UserName:       req.UserName,
		NumberOfSeats:  req.NumberOfSeats,
		SelectedSeats:  req.SelectedSeats,
		MealPreference: domain.MealPreference(req.MealPreference),
		JourneyDate:    journey,
		Passengers:     passengers,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) ticket(c *gin.Context) {
	found, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) history(c *gin.Context) {
	bookings, err := h.service.GetHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// cancel answers 503 with the booking when it was cancelled but its seats
// could not be released.
func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		if cancelled != nil {
			c.JSON(statusOf(err), gin.H{"error": apperr.Message(err), "booking": toBookingResponse(cancelled)})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}
