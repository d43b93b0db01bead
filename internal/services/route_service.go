package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	intconfig "busgo/internal/config"
	intdb "busgo/internal/db"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/jmoiron/sqlx"
)

const routeListCacheKey = "routes:all"

type RouteService struct {
	DB        *sqlx.DB
	Routes    repositories.RouteRepo
	RequestID string
}

// RouteInput carries route fields from a request. A nil pointer means the
// field was absent; for Category an empty string clears it. Stops holds the
// raw value (list or comma-separated string) when StopsSet.
type RouteInput struct {
	RouteNumber *string
	Category    *string
	CategorySet bool
	Origin      *string
	Destination *string
	Stops       any
	StopsSet    bool
}

func (s RouteService) db() *sqlx.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s RouteService) routes() repositories.RouteRepo {
	if s.Routes.DB != nil {
		return s.Routes
	}
	return repositories.RouteRepo{DB: s.db()}
}

func (s RouteService) List(ctx context.Context) ([]models.Route, error) {
	if intconfig.RouteCache != nil {
		if v, ok := intconfig.RouteCache.Get(routeListCacheKey); ok {
			return v.([]models.Route), nil
		}
	}
	out, err := s.routes().List(ctx)
	if err != nil {
		return nil, err
	}
	if intconfig.RouteCache != nil {
		intconfig.RouteCache.SetDefault(routeListCacheKey, out)
	}
	return out, nil
}

func (s RouteService) Get(ctx context.Context, id int64) (models.Route, error) {
	return s.routes().GetByID(ctx, id)
}

func (s RouteService) Create(ctx context.Context, in RouteInput) (models.Route, error) {
	var rt models.Route
	if err := applyRouteInput(&rt, in); err != nil {
		return rt, err
	}
	if err := validateRoute(rt); err != nil {
		return rt, err
	}
	id, err := s.routes().Create(ctx, rt)
	if err != nil {
		if repositories.IsDuplicate(err) {
			return rt, domain.ConflictError{Resource: "route", Msg: "route number already exists", Err: err}
		}
		return rt, domain.InternalError{Msg: "failed to create route", Err: err}
	}
	rt.ID = id
	s.flush()
	utils.LogEvent(s.RequestID, "route", "create", fmt.Sprintf("route_id=%d number=%s stops=%d", id, rt.RouteNumber, len(rt.Stops)))
	return s.routes().GetByID(ctx, id)
}

// Update merges in onto the stored route and copies the structural fields
// onto every trip of the route in the same transaction.
func (s RouteService) Update(ctx context.Context, id int64, in RouteInput) (models.Route, error) {
	conn := s.db()
	if conn == nil {
		return models.Route{}, domain.InternalError{Msg: "database not connected"}
	}
	var synced int64
	err := intdb.WithinTx(ctx, conn, func(tx *sqlx.Tx) error {
		rt, err := s.routes().GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		prevStops := rt.FareStops()
		if err := applyRouteInput(&rt, in); err != nil {
			return err
		}
		if err := validateRoute(rt); err != nil {
			return err
		}
		if err := s.routes().LockTrips(ctx, tx, id); err != nil {
			return err
		}
		if !slices.Equal(prevStops, rt.FareStops()) {
			sections, err := repositories.BookingRepo{DB: conn}.SectionsOnRoute(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := keepsBookedSections(rt.FareStops(), sections); err != nil {
				return err
			}
		}
		if err := s.routes().Update(ctx, tx, rt); err != nil {
			return err
		}
		synced, err = s.routes().SyncTrips(ctx, tx, rt)
		return err
	})
	if err != nil {
		if repositories.IsDuplicate(err) {
			return models.Route{}, domain.ConflictError{Resource: "route", Msg: "route number already exists", Err: err}
		}
		if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) {
			return models.Route{}, err
		}
		return models.Route{}, domain.InternalError{Msg: "failed to update route", Err: err}
	}
	s.flush()
	utils.LogEvent(s.RequestID, "route", "update", fmt.Sprintf("route_id=%d trips_synced=%d", id, synced))
	return s.routes().GetByID(ctx, id)
}

func (s RouteService) Delete(ctx context.Context, id int64) error {
	if _, err := s.routes().GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.routes().CountTrips(ctx, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n > 0 {
		return domain.ConflictError{Resource: "route", Msg: fmt.Sprintf("%d trip(s) still use this route", n)}
	}
	if err := s.routes().Delete(ctx, id); err != nil {
		if repositories.IsReferenced(err) {
			return domain.ConflictError{Resource: "route", Msg: "route is still referenced", Err: err}
		}
		return err
	}
	s.flush()
	utils.LogEvent(s.RequestID, "route", "delete", fmt.Sprintf("route_id=%d", id))
	return nil
}

func (s RouteService) flush() {
	if intconfig.RouteCache != nil {
		intconfig.RouteCache.Flush()
	}
}

func applyRouteInput(rt *models.Route, in RouteInput) error {
	if in.RouteNumber != nil {
		rt.RouteNumber = utils.NormalizeSpace(*in.RouteNumber)
	}
	if in.Origin != nil {
		rt.Origin = utils.NormalizeSpace(*in.Origin)
	}
	if in.Destination != nil {
		rt.Destination = utils.NormalizeSpace(*in.Destination)
	}
	if in.CategorySet {
		cat, err := parseCategory(in.Category)
		if err != nil {
			return err
		}
		rt.Category = cat
	}
	if in.StopsSet {
		rt.Stops = models.Stops(utils.NormalizeStops(in.Stops))
	}
	rt.Stops = utils.AnchorStops(rt.Stops, rt.Origin, rt.Destination)
	return nil
}

func parseCategory(v *string) (*models.RouteCategory, error) {
	if v == nil {
		return nil, nil
	}
	raw := strings.ToUpper(strings.TrimSpace(*v))
	if raw == "" {
		return nil, nil
	}
	c := models.RouteCategory(raw)
	if !c.Valid() {
		return nil, domain.ValidationError{Field: "category", Msg: "must be one of XL, AC, S, N"}
	}
	return &c, nil
}

func validateRoute(rt models.Route) error {
	if rt.RouteNumber == "" {
		return domain.ValidationError{Field: "routeNumber", Msg: "required"}
	}
	if rt.Origin == "" {
		return domain.ValidationError{Field: "origin", Msg: "required"}
	}
	if rt.Destination == "" {
		return domain.ValidationError{Field: "destination", Msg: "required"}
	}
	return validateStops(rt.Stops)
}

// validateStops requires at least two stops with unique names when a stop
// list is present.
func validateStops(stops models.Stops) error {
	if len(stops) == 0 {
		return nil
	}
	if len(stops) < 2 {
		return domain.ValidationError{Field: "stops", Msg: "need at least two stops"}
	}
	seen := make(map[string]bool, len(stops))
	for _, st := range stops {
		key := strings.ToLower(st)
		if seen[key] {
			return domain.ValidationError{Field: "stops", Msg: fmt.Sprintf("duplicate stop %q", st)}
		}
		seen[key] = true
	}
	return nil
}
