package utils

import (
	"strings"

	"busgo/internal/domain"

	"github.com/shopspring/decimal"
)

// StopIndex returns the position of name in stops (case-insensitive,
// surrounding whitespace ignored), or -1.
func StopIndex(stops []string, name string) int {
	n := strings.TrimSpace(name)
	if n == "" {
		return -1
	}
	for i, s := range stops {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return i
		}
	}
	return -1
}

// SectionIndexes resolves a boarding/alighting pair to stop indexes.
// Boarding must come strictly before alighting.
func SectionIndexes(stops []string, boarding, alighting string) (int, int, error) {
	from := StopIndex(stops, boarding)
	if from < 0 {
		return 0, 0, domain.ValidationError{Field: "boardingStop", Msg: "stop not on this route", Err: domain.ErrInvalidSection}
	}
	to := StopIndex(stops, alighting)
	if to < 0 {
		return 0, 0, domain.ValidationError{Field: "alightingStop", Msg: "stop not on this route", Err: domain.ErrInvalidSection}
	}
	if from >= to {
		return 0, 0, domain.ValidationError{Field: "alightingStop", Msg: "must come after the boarding stop", Err: domain.ErrInvalidSection}
	}
	return from, to, nil
}

// ComputeSectionFare prorates fullRoutePrice by stop-hops travelled and
// multiplies by seatCount. The fare is linear in hops, and rounding happens
// once, to 2 decimals, half away from zero:
//
//	fare = round(fullRoutePrice * (to-from) * seats / (len(stops)-1), 2)
func ComputeSectionFare(stops []string, fullRoutePrice decimal.Decimal, boarding, alighting string, seatCount int) (decimal.Decimal, error) {
	from, to, err := SectionIndexes(stops, boarding, alighting)
	if err != nil {
		return decimal.Zero, err
	}
	if !domain.ValidSeatCount(seatCount) {
		return decimal.Zero, domain.ValidationError{Field: "seats", Msg: "must be between 1 and 10", Err: domain.ErrInvalidSeatCount}
	}

	segments := int64(len(stops) - 1)
	if segments <= 0 {
		segments = 1
	}
	travelled := int64(to - from)

	units := fullRoutePrice.Mul(decimal.NewFromInt(travelled * int64(seatCount)))
	return units.DivRound(decimal.NewFromInt(segments), 2), nil
}

// FlatFare is the full-route price times seats, used when no section is given.
func FlatFare(fullRoutePrice decimal.Decimal, seatCount int) decimal.Decimal {
	return fullRoutePrice.Mul(decimal.NewFromInt(int64(seatCount))).Round(2)
}
