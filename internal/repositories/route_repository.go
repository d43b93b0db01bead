package repositories

import (
	"context"

	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const routeColumns = `id, route_number, category, origin, destination, stops, created_at, updated_at`

type RouteRepo struct {
	DB *sqlx.DB
}

func (r RouteRepo) db() *sqlx.DB { return orGlobal(r.DB) }

func (r RouteRepo) List(ctx context.Context) ([]models.Route, error) {
	out := []models.Route{}
	err := sqlx.SelectContext(ctx, r.db(), &out, `SELECT `+routeColumns+` FROM routes ORDER BY route_number ASC, id ASC`)
	return out, err
}

func (r RouteRepo) GetByID(ctx context.Context, id int64) (models.Route, error) {
	return r.get(ctx, r.db(), id, "")
}

// GetForUpdate reads and row-locks a route inside tx.
func (r RouteRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (models.Route, error) {
	return r.get(ctx, tx, id, " FOR UPDATE")
}

func (r RouteRepo) get(ctx context.Context, q sqlx.QueryerContext, id int64, suffix string) (models.Route, error) {
	var rt models.Route
	err := sqlx.GetContext(ctx, q, &rt, `SELECT `+routeColumns+` FROM routes WHERE id=? LIMIT 1`+suffix, id)
	return rt, notFound("route", err)
}

func (r RouteRepo) Create(ctx context.Context, rt models.Route) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO routes (route_number, category, origin, destination, stops)
		VALUES (?, ?, ?, ?, ?)
	`, rt.RouteNumber, rt.Category, rt.Origin, rt.Destination, rt.Stops)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepo) Update(ctx context.Context, tx *sqlx.Tx, rt models.Route) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE routes
		SET route_number=?, category=?, origin=?, destination=?, stops=?
		WHERE id=?
	`, rt.RouteNumber, rt.Category, rt.Origin, rt.Destination, rt.Stops, rt.ID)
	if err != nil {
		return err
	}
	_, err = res.RowsAffected()
	return err
}

// SyncTrips copies the route's structural fields onto every trip using it.
func (r RouteRepo) SyncTrips(ctx context.Context, tx *sqlx.Tx, rt models.Route) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE trips
		SET route_number=?, origin=?, destination=?, stops=?
		WHERE route_id=?
	`, rt.RouteNumber, rt.Origin, rt.Destination, rt.Stops, rt.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LockTrips row-locks every trip of the route ahead of a propagating update.
func (r RouteRepo) LockTrips(ctx context.Context, tx *sqlx.Tx, routeID int64) error {
	ids := []int64{}
	return sqlx.SelectContext(ctx, tx, &ids, `SELECT id FROM trips WHERE route_id=? ORDER BY id FOR UPDATE`, routeID)
}

func (r RouteRepo) CountTrips(ctx context.Context, routeID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db(), &n, `SELECT COUNT(*) FROM trips WHERE route_id=?`, routeID)
	return n, err
}

func (r RouteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM routes WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res, "route")
}
