package domain

import "busgo/internal/domain/models"

const (
	MinSeats = 1
	MaxSeats = 10
)

// SeatClaim is the part of a booking that counts against bus capacity.
type SeatClaim struct {
	BookingID int64
	Seats     int
	Status    models.BookingStatus
}

// Availability is the outcome of CheckAvailability.
type Availability struct {
	Allowed        bool `json:"allowed"`
	AvailableSeats int  `json:"availableSeats"`
	BookedSeats    int  `json:"bookedSeats"`
}

// CheckAvailability sums seats held by non-cancelled claims (skipping
// excludeBookingID when non-zero) and decides whether requested seats fit.
// AvailableSeats may be negative when a trip is already oversold.
func CheckAvailability(busTotalSeats int, existing []SeatClaim, requested int, excludeBookingID int64) Availability {
	booked := 0
	for _, c := range existing {
		if c.Status == models.BookingCancelled {
			continue
		}
		if excludeBookingID != 0 && c.BookingID == excludeBookingID {
			continue
		}
		booked += c.Seats
	}
	available := busTotalSeats - booked
	return Availability{
		Allowed:        ValidSeatCount(requested) && requested <= available,
		AvailableSeats: available,
		BookedSeats:    booked,
	}
}

func ValidSeatCount(n int) bool {
	return n >= MinSeats && n <= MaxSeats
}

// Reserve runs CheckAvailability and converts a rejection into the matching
// domain error.
func Reserve(busTotalSeats int, existing []SeatClaim, requested int, excludeBookingID int64) (Availability, error) {
	if !ValidSeatCount(requested) {
		return Availability{}, ValidationError{Field: "seats", Msg: "must be between 1 and 10", Err: ErrInvalidSeatCount}
	}
	a := CheckAvailability(busTotalSeats, existing, requested, excludeBookingID)
	if !a.Allowed {
		avail := a.AvailableSeats
		if avail < 0 {
			avail = 0
		}
		return a, CapacityError{Requested: requested, Available: avail}
	}
	return a, nil
}
