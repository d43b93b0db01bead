package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID            int64               `json:"id" db:"id"`
	TripID        int64               `json:"tripId" db:"trip_id"`
	UserID        *int64              `json:"userId" db:"user_id"`
	Seats         int                 `json:"seats" db:"seats"`
	Status        BookingStatus       `json:"status" db:"status"`
	BoardingStop  *string             `json:"boardingStop" db:"boarding_stop"`
	AlightingStop *string             `json:"alightingStop" db:"alighting_stop"`
	TotalPrice    decimal.NullDecimal `json:"totalPrice" db:"total_price"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
}

// HasSection reports whether the booking covers only part of the route.
func (b Booking) HasSection() bool {
	return b.BoardingStop != nil && b.AlightingStop != nil
}

// BookingDetail joins a booking with the trip fields shown to customers.
type BookingDetail struct {
	Booking
	Origin        string          `json:"origin" db:"origin"`
	Destination   string          `json:"destination" db:"destination"`
	RouteNumber   *string         `json:"routeNumber" db:"route_number"`
	DepartureTime time.Time       `json:"departureTime" db:"departure_time"`
	ArrivalTime   time.Time       `json:"arrivalTime" db:"arrival_time"`
	TripPrice     decimal.Decimal `json:"tripPrice" db:"trip_price"`
	BusName       string          `json:"busName" db:"bus_name"`
	NumberPlate   string          `json:"numberPlate" db:"number_plate"`
	UserName      *string         `json:"userName,omitempty" db:"user_name"`
	UserEmail     *string         `json:"userEmail,omitempty" db:"user_email"`
}

// BookingUpdate supports PATCH-style updates via key presence.
type BookingUpdate struct {
	Seats  *int
	Status *BookingStatus
}
