package models

import "time"

// RouteCategory is the service class of a route.
type RouteCategory string

const (
	CategoryXL RouteCategory = "XL"
	CategoryAC RouteCategory = "AC"
	CategoryS  RouteCategory = "S"
	CategoryN  RouteCategory = "N"
)

var routeCategories = map[RouteCategory]bool{
	CategoryXL: true,
	CategoryAC: true,
	CategoryS:  true,
	CategoryN:  true,
}

func (c RouteCategory) Valid() bool { return routeCategories[c] }

// Route is the physical path of a service. Stops include origin and
// destination, in travel order.
type Route struct {
	ID          int64          `json:"id" db:"id"`
	RouteNumber string         `json:"routeNumber" db:"route_number"`
	Category    *RouteCategory `json:"category" db:"category"`
	Origin      string         `json:"origin" db:"origin"`
	Destination string         `json:"destination" db:"destination"`
	Stops       Stops          `json:"stops" db:"stops"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// FareStops returns the stop list used for section fares, falling back to
// origin -> destination when no stops were recorded.
func (r Route) FareStops() []string {
	if len(r.Stops) >= 2 {
		return r.Stops
	}
	return []string{r.Origin, r.Destination}
}
