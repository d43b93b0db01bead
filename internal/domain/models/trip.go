package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trip is a scheduled run of a bus. RouteNumber, Origin, Destination and
// Stops are copied from the route at creation and kept in sync on route
// updates.
type Trip struct {
	ID            int64           `json:"id" db:"id"`
	BusID         int64           `json:"busId" db:"bus_id"`
	RouteID       *int64          `json:"routeId" db:"route_id"`
	RouteNumber   *string         `json:"routeNumber" db:"route_number"`
	Origin        string          `json:"origin" db:"origin"`
	Destination   string          `json:"destination" db:"destination"`
	Stops         Stops           `json:"stops" db:"stops"`
	DepartureTime time.Time       `json:"departureTime" db:"departure_time"`
	ArrivalTime   time.Time       `json:"arrivalTime" db:"arrival_time"`
	Price         decimal.Decimal `json:"price" db:"price"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// FareStops mirrors Route.FareStops for the denormalized copy.
func (t Trip) FareStops() []string {
	if len(t.Stops) >= 2 {
		return t.Stops
	}
	return []string{t.Origin, t.Destination}
}

// TripDetail is a trip joined with its bus and current seat usage.
type TripDetail struct {
	Trip
	BusName        string `json:"busName" db:"bus_name"`
	NumberPlate    string `json:"numberPlate" db:"number_plate"`
	TotalSeats     int    `json:"totalSeats" db:"total_seats"`
	BookedSeats    int    `json:"bookedSeats" db:"booked_seats"`
	AvailableSeats int    `json:"availableSeats" db:"-"`
}
