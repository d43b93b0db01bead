package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busgo_bookings_created_total",
		Help: "Bookings accepted by the seat allocator.",
	})
	SeatsBooked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busgo_seats_booked_total",
		Help: "Seats committed by new bookings.",
	})
	BookingRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busgo_booking_rejections_total",
		Help: "Booking requests rejected, by reason.",
	}, []string{"reason"})
	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busgo_event_publish_errors_total",
		Help: "Booking events that failed to publish.",
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busgo_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "busgo_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Rejection reasons.
const (
	ReasonInvalidSection = "invalid_section"
	ReasonSeatCount      = "invalid_seat_count"
	ReasonCapacity       = "capacity_exceeded"
)
