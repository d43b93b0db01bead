package services

import (
	"strings"

	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/utils"

	"github.com/shopspring/decimal"
)

// Pricing is the fare of a seat request on a trip. Stops are canonical
// names from the trip's stop list; both nil means a full-route booking.
type Pricing struct {
	BoardingStop  *string         `json:"boardingStop"`
	AlightingStop *string         `json:"alightingStop"`
	Segments      int             `json:"segments"`
	TotalSegments int             `json:"totalSegments"`
	Seats         int             `json:"seats"`
	Total         decimal.Decimal `json:"total"`
}

// PriceTrip prices seats on t. With no stops given the flat route price
// applies; when only one is given the other defaults to the route end.
func PriceTrip(t models.Trip, seats int, boarding, alighting string) (Pricing, error) {
	stops := t.FareStops()
	total := len(stops) - 1
	if total < 1 {
		total = 1
	}
	boarding = strings.TrimSpace(boarding)
	alighting = strings.TrimSpace(alighting)

	if boarding == "" && alighting == "" {
		if !domain.ValidSeatCount(seats) {
			return Pricing{}, domain.ValidationError{Field: "seats", Msg: "must be between 1 and 10", Err: domain.ErrInvalidSeatCount}
		}
		return Pricing{Segments: total, TotalSegments: total, Seats: seats, Total: utils.FlatFare(t.Price, seats)}, nil
	}
	if boarding == "" {
		boarding = stops[0]
	}
	if alighting == "" {
		alighting = stops[len(stops)-1]
	}

	from, to, err := utils.SectionIndexes(stops, boarding, alighting)
	if err != nil {
		return Pricing{}, err
	}
	fare, err := utils.ComputeSectionFare(stops, t.Price, boarding, alighting, seats)
	if err != nil {
		return Pricing{}, err
	}
	b, a := stops[from], stops[to]
	return Pricing{
		BoardingStop:  &b,
		AlightingStop: &a,
		Segments:      to - from,
		TotalSegments: total,
		Seats:         seats,
		Total:         fare,
	}, nil
}
