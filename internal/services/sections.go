package services

import (
	"fmt"

	"busgo/internal/domain"
	"busgo/internal/repositories"
	"busgo/internal/utils"
)

// keepsBookedSections refuses a stop list on which a live booking's stored
// section can no longer be priced.
func keepsBookedSections(stops []string, sections []repositories.BookedSection) error {
	if len(stops) < 2 {
		return nil
	}
	for _, sec := range sections {
		boarding, alighting := stops[0], stops[len(stops)-1]
		if sec.BoardingStop != nil {
			boarding = *sec.BoardingStop
		}
		if sec.AlightingStop != nil {
			alighting = *sec.AlightingStop
		}
		if _, _, err := utils.SectionIndexes(stops, boarding, alighting); err != nil {
			return domain.ConflictError{
				Resource: "stops",
				Msg:      fmt.Sprintf("booking %d travels %s -> %s, which the new stops no longer serve", sec.BookingID, boarding, alighting),
			}
		}
	}
	return nil
}
