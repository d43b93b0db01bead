package events

import (
	"context"
	"time"

	"busgo/internal/domain/models"

	"github.com/shopspring/decimal"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingUpdated   Type = "booking.updated"
	BookingCancelled Type = "booking.cancelled"
	BookingDeleted   Type = "booking.deleted"
)

// BookingEvent is the payload published for booking lifecycle changes.
type BookingEvent struct {
	Type          Type                 `json:"type"`
	BookingID     int64                `json:"bookingId"`
	TripID        int64                `json:"tripId"`
	UserID        *int64               `json:"userId,omitempty"`
	Seats         int                  `json:"seats"`
	Status        models.BookingStatus `json:"status"`
	BoardingStop  *string              `json:"boardingStop,omitempty"`
	AlightingStop *string              `json:"alightingStop,omitempty"`
	TotalPrice    decimal.NullDecimal  `json:"totalPrice"`
	RequestID     string               `json:"requestId,omitempty"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

func NewBookingEvent(t Type, b models.Booking, requestID string) BookingEvent {
	return BookingEvent{
		Type:          t,
		BookingID:     b.ID,
		TripID:        b.TripID,
		UserID:        b.UserID,
		Seats:         b.Seats,
		Status:        b.Status,
		BoardingStop:  b.BoardingStop,
		AlightingStop: b.AlightingStop,
		TotalPrice:    b.TotalPrice,
		RequestID:     requestID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers booking events to downstream consumers (notification
// senders, analytics). Publishing happens after commit and is best-effort.
type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
	Close() error
}
