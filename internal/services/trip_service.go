package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	intconfig "busgo/internal/config"
	intdb "busgo/internal/db"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type TripService struct {
	DB        *sqlx.DB
	Trips     repositories.TripRepo
	Routes    repositories.RouteRepo
	Buses     repositories.BusRepo
	Location  *time.Location
	RequestID string
}

// TripInput carries trip fields from a request; nil means absent. Setting
// RouteID copies the route's number, endpoints and stops onto the trip.
type TripInput struct {
	BusID         *int64
	RouteID       *int64
	RouteNumber   *string
	Origin        *string
	Destination   *string
	Stops         any
	StopsSet      bool
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	Price         *decimal.Decimal
}

// TripQuery filters the public trip search. Date is YYYY-MM-DD in the
// service timezone.
type TripQuery struct {
	Origin      string
	Destination string
	Date        string
	BusID       int64
	RouteID     int64
}

type TripAvailability struct {
	TripID         int64 `json:"tripId"`
	TotalSeats     int   `json:"totalSeats"`
	BookedSeats    int   `json:"bookedSeats"`
	AvailableSeats int   `json:"availableSeats"`
}

type Quote struct {
	TripID int64 `json:"tripId"`
	Pricing
	FullRoutePrice decimal.Decimal `json:"fullRoutePrice"`
	AvailableSeats int             `json:"availableSeats"`
	Allowed        bool            `json:"allowed"`
}

func (s TripService) db() *sqlx.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) trips() repositories.TripRepo {
	if s.Trips.DB != nil {
		return s.Trips
	}
	return repositories.TripRepo{DB: s.db()}
}

func (s TripService) routes() repositories.RouteRepo {
	if s.Routes.DB != nil {
		return s.Routes
	}
	return repositories.RouteRepo{DB: s.db()}
}

func (s TripService) buses() repositories.BusRepo {
	if s.Buses.DB != nil {
		return s.Buses
	}
	return repositories.BusRepo{DB: s.db()}
}

func (s TripService) bookings() repositories.BookingRepo {
	return repositories.BookingRepo{DB: s.db()}
}

func (s TripService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return utils.Colombo
}

// Search lists trips departing on q.Date (when given) that serve the
// requested origin/destination pair in travel order.
func (s TripService) Search(ctx context.Context, q TripQuery) ([]models.TripDetail, error) {
	f := repositories.TripFilter{BusID: q.BusID, RouteID: q.RouteID}
	if strings.TrimSpace(q.Date) != "" {
		day, err := utils.ParseDate(q.Date, s.loc())
		if err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "use YYYY-MM-DD", Err: err}
		}
		f.DepartFrom, f.DepartTo = utils.DayBounds(day)
	}
	all, err := s.trips().List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.TripDetail, 0, len(all))
	for _, t := range all {
		if ServesSection(t.FareStops(), q.Origin, q.Destination) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ServesSection reports whether a trip with stops can carry a passenger from
// origin to destination. Empty names match any stop that allows travel in
// that direction.
func ServesSection(stops []string, origin, destination string) bool {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	switch {
	case origin == "" && destination == "":
		return true
	case destination == "":
		i := utils.StopIndex(stops, origin)
		return i >= 0 && i < len(stops)-1
	case origin == "":
		return utils.StopIndex(stops, destination) > 0
	default:
		i := utils.StopIndex(stops, origin)
		j := utils.StopIndex(stops, destination)
		return i >= 0 && j > i
	}
}

func (s TripService) Get(ctx context.Context, id int64) (models.TripDetail, error) {
	return s.trips().GetDetail(ctx, id)
}

func (s TripService) Availability(ctx context.Context, id int64) (TripAvailability, error) {
	d, err := s.trips().GetDetail(ctx, id)
	if err != nil {
		return TripAvailability{}, err
	}
	avail := d.AvailableSeats
	if avail < 0 {
		avail = 0
	}
	return TripAvailability{TripID: d.ID, TotalSeats: d.TotalSeats, BookedSeats: d.BookedSeats, AvailableSeats: avail}, nil
}

// Quote prices a prospective booking without reserving anything.
func (s TripService) Quote(ctx context.Context, id int64, seats int, boarding, alighting string) (Quote, error) {
	d, err := s.trips().GetDetail(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	p, err := PriceTrip(d.Trip, seats, boarding, alighting)
	if err != nil {
		return Quote{}, err
	}
	avail := d.AvailableSeats
	if avail < 0 {
		avail = 0
	}
	return Quote{
		TripID:         d.ID,
		Pricing:        p,
		FullRoutePrice: d.Price,
		AvailableSeats: avail,
		Allowed:        seats <= avail,
	}, nil
}

func (s TripService) Create(ctx context.Context, in TripInput) (models.TripDetail, error) {
	var t models.Trip
	if err := s.apply(ctx, &t, in); err != nil {
		return models.TripDetail{}, err
	}
	if err := validateTrip(t); err != nil {
		return models.TripDetail{}, err
	}
	if _, err := s.buses().GetByID(ctx, t.BusID); err != nil {
		return models.TripDetail{}, busRefErr(err)
	}
	id, err := s.trips().Create(ctx, t)
	if err != nil {
		if repositories.IsMissingParent(err) {
			return models.TripDetail{}, domain.ValidationError{Field: "busId", Msg: "bus or route does not exist", Err: err}
		}
		return models.TripDetail{}, domain.InternalError{Msg: "failed to create trip", Err: err}
	}
	utils.LogEvent(s.RequestID, "trip", "create", fmt.Sprintf("trip_id=%d bus_id=%d origin=%s destination=%s", id, t.BusID, t.Origin, t.Destination))
	return s.trips().GetDetail(ctx, id)
}

// Update rewrites a trip while holding its row and bus locks. Moving it to
// another bus needs room for the seats already booked, and a changed stop
// list must still serve every live booking's section.
func (s TripService) Update(ctx context.Context, id int64, in TripInput) (models.TripDetail, error) {
	t, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.TripDetail{}, err
	}
	if err := s.apply(ctx, &t, in); err != nil {
		return models.TripDetail{}, err
	}
	conn := s.db()
	if conn == nil {
		return models.TripDetail{}, domain.InternalError{Msg: "database not connected"}
	}

	err = intdb.WithinTx(ctx, conn, func(tx *sqlx.Tx) error {
		locked, err := s.trips().LockForBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if in.BusID == nil {
			t.BusID = locked.BusID
		}
		if err := validateTrip(t); err != nil {
			return err
		}
		if t.BusID != locked.BusID {
			bus, err := s.buses().GetForUpdate(ctx, tx, t.BusID)
			if err != nil {
				return busRefErr(err)
			}
			claims, err := s.bookings().SeatClaims(ctx, tx, id)
			if err != nil {
				return err
			}
			if a := domain.CheckAvailability(bus.TotalSeats, claims, 0, 0); a.AvailableSeats < 0 {
				return domain.ConflictError{Resource: "trip", Msg: fmt.Sprintf("bus %d has %d seat(s) but %d are booked on this trip", bus.ID, bus.TotalSeats, a.BookedSeats)}
			}
		}
		if !slices.Equal(locked.FareStops(), t.FareStops()) {
			sections, err := s.bookings().SectionsOnTrip(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := keepsBookedSections(t.FareStops(), sections); err != nil {
				return err
			}
		}
		return s.trips().Update(ctx, tx, t)
	})
	if err != nil {
		if repositories.IsMissingParent(err) {
			return models.TripDetail{}, domain.ValidationError{Field: "busId", Msg: "bus or route does not exist", Err: err}
		}
		if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) {
			return models.TripDetail{}, err
		}
		return models.TripDetail{}, domain.InternalError{Msg: "failed to update trip", Err: err}
	}
	utils.LogEvent(s.RequestID, "trip", "update", fmt.Sprintf("trip_id=%d bus_id=%d", id, t.BusID))
	return s.trips().GetDetail(ctx, id)
}

// Delete refuses while live bookings exist; cancelled ones go with the trip.
func (s TripService) Delete(ctx context.Context, id int64) error {
	if _, err := s.trips().GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.trips().CountActiveBookings(ctx, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n > 0 {
		return domain.ConflictError{Resource: "trip", Msg: fmt.Sprintf("%d active booking(s) on this trip", n)}
	}
	if err := s.trips().Delete(ctx, id); err != nil {
		return err
	}
	if intconfig.StatsCache != nil {
		intconfig.StatsCache.Flush()
	}
	utils.LogEvent(s.RequestID, "trip", "delete", fmt.Sprintf("trip_id=%d", id))
	return nil
}

func (s TripService) apply(ctx context.Context, t *models.Trip, in TripInput) error {
	if in.BusID != nil {
		t.BusID = *in.BusID
	}
	if in.RouteNumber != nil {
		rn := utils.NormalizeSpace(*in.RouteNumber)
		t.RouteNumber = &rn
		if rn == "" {
			t.RouteNumber = nil
		}
	}
	if in.Origin != nil {
		t.Origin = utils.NormalizeSpace(*in.Origin)
	}
	if in.Destination != nil {
		t.Destination = utils.NormalizeSpace(*in.Destination)
	}
	if in.StopsSet {
		t.Stops = models.Stops(utils.NormalizeStops(in.Stops))
	}
	if in.DepartureTime != nil {
		t.DepartureTime = in.DepartureTime.UTC()
	}
	if in.ArrivalTime != nil {
		t.ArrivalTime = in.ArrivalTime.UTC()
	}
	if in.Price != nil {
		t.Price = *in.Price
	}
	if in.RouteID != nil {
		if *in.RouteID <= 0 {
			t.RouteID = nil
			t.Stops = utils.AnchorStops(t.Stops, t.Origin, t.Destination)
			return nil
		}
		rt, err := s.routes().GetByID(ctx, *in.RouteID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.ValidationError{Field: "routeId", Msg: "route does not exist"}
			}
			return err
		}
		routeID := rt.ID
		rn := rt.RouteNumber
		t.RouteID = &routeID
		t.RouteNumber = &rn
		t.Origin = rt.Origin
		t.Destination = rt.Destination
		t.Stops = rt.Stops
	}
	t.Stops = utils.AnchorStops(t.Stops, t.Origin, t.Destination)
	return nil
}

func validateTrip(t models.Trip) error {
	if t.BusID <= 0 {
		return domain.ValidationError{Field: "busId", Msg: "required"}
	}
	if t.Origin == "" {
		return domain.ValidationError{Field: "origin", Msg: "required"}
	}
	if t.Destination == "" {
		return domain.ValidationError{Field: "destination", Msg: "required"}
	}
	if t.DepartureTime.IsZero() {
		return domain.ValidationError{Field: "departureTime", Msg: "required"}
	}
	if !t.ArrivalTime.After(t.DepartureTime) {
		return domain.ValidationError{Field: "arrivalTime", Msg: "must be after departureTime"}
	}
	if !t.Price.IsPositive() {
		return domain.ValidationError{Field: "price", Msg: "must be greater than zero"}
	}
	return validateStops(t.Stops)
}

func busRefErr(err error) error {
	if domain.IsNotFound(err) {
		return domain.ValidationError{Field: "busId", Msg: "bus does not exist"}
	}
	return err
}
