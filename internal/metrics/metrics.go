package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbooking",
		Name:      "booking_operations_total",
		Help:      "Booking orchestrator operations by outcome.",
	}, []string{"operation", "outcome"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "flightbooking",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open.",
	}, []string{"name"})

	InventoryConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbooking",
		Name:      "inventory_version_conflicts_total",
		Help:      "Seat inventory writes retried after a version conflict.",
	}, []string{"operation"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flightbooking",
		Name:      "booking_events_published_total",
		Help:      "Booking events handed to the transport by outcome.",
	}, []string{"outcome"})
)

// Handler exposes the default registry for gin routers.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
