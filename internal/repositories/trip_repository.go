package repositories

import (
	"context"
	"strings"
	"time"

	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const tripColumns = `t.id, t.bus_id, t.route_id, t.route_number, t.origin, t.destination, t.stops,
	t.departure_time, t.arrival_time, t.price, t.created_at, t.updated_at`

const tripDetailSelect = `
	SELECT ` + tripColumns + `,
		b.name AS bus_name, b.number_plate, b.total_seats,
		COALESCE((
			SELECT SUM(bk.seats) FROM bookings bk
			WHERE bk.trip_id = t.id AND bk.status <> 'cancelled'
		), 0) AS booked_seats
	FROM trips t
	JOIN buses b ON b.id = t.bus_id`

// TripFilter narrows trip listings. Zero values mean "any".
type TripFilter struct {
	DepartFrom time.Time
	DepartTo   time.Time
	BusID      int64
	RouteID    int64
}

// LockedTrip is a trip row locked for a booking write, with its capacity.
type LockedTrip struct {
	models.Trip
	TotalSeats int `db:"total_seats"`
}

type TripRepo struct {
	DB *sqlx.DB
}

func (r TripRepo) db() *sqlx.DB { return orGlobal(r.DB) }

func (r TripRepo) List(ctx context.Context, f TripFilter) ([]models.TripDetail, error) {
	where := []string{"1=1"}
	args := []any{}
	if !f.DepartFrom.IsZero() {
		where = append(where, "t.departure_time >= ?")
		args = append(args, f.DepartFrom)
	}
	if !f.DepartTo.IsZero() {
		where = append(where, "t.departure_time < ?")
		args = append(args, f.DepartTo)
	}
	if f.BusID > 0 {
		where = append(where, "t.bus_id = ?")
		args = append(args, f.BusID)
	}
	if f.RouteID > 0 {
		where = append(where, "t.route_id = ?")
		args = append(args, f.RouteID)
	}

	query := tripDetailSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY t.departure_time ASC, t.id ASC`
	out := []models.TripDetail{}
	if err := sqlx.SelectContext(ctx, r.db(), &out, query, args...); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AvailableSeats = out[i].TotalSeats - out[i].BookedSeats
	}
	return out, nil
}

func (r TripRepo) GetDetail(ctx context.Context, id int64) (models.TripDetail, error) {
	var d models.TripDetail
	if err := sqlx.GetContext(ctx, r.db(), &d, tripDetailSelect+` WHERE t.id = ? LIMIT 1`, id); err != nil {
		return d, notFound("trip", err)
	}
	d.AvailableSeats = d.TotalSeats - d.BookedSeats
	return d, nil
}

func (r TripRepo) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	var t models.Trip
	err := sqlx.GetContext(ctx, r.db(), &t, `SELECT `+tripColumns+` FROM trips t WHERE t.id = ? LIMIT 1`, id)
	return t, notFound("trip", err)
}

// LockForBooking row-locks the trip and, through the join, its bus, so
// bookings on the trip and capacity changes to the bus serialize until tx
// ends.
func (r TripRepo) LockForBooking(ctx context.Context, tx *sqlx.Tx, id int64) (LockedTrip, error) {
	var lt LockedTrip
	err := sqlx.GetContext(ctx, tx, &lt, `
		SELECT `+tripColumns+`, b.total_seats
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE t.id = ?
		FOR UPDATE`, id)
	return lt, notFound("trip", err)
}

func (r TripRepo) Create(ctx context.Context, t models.Trip) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO trips (bus_id, route_id, route_number, origin, destination, stops, departure_time, arrival_time, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.BusID, t.RouteID, t.RouteNumber, t.Origin, t.Destination, t.Stops, t.DepartureTime, t.ArrivalTime, t.Price)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TripRepo) Update(ctx context.Context, tx *sqlx.Tx, t models.Trip) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE trips
		SET bus_id=?, route_id=?, route_number=?, origin=?, destination=?, stops=?,
			departure_time=?, arrival_time=?, price=?
		WHERE id=?
	`, t.BusID, t.RouteID, t.RouteNumber, t.Origin, t.Destination, t.Stops, t.DepartureTime, t.ArrivalTime, t.Price, t.ID)
	if err != nil {
		return err
	}
	_, err = res.RowsAffected()
	return err
}

func (r TripRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM trips WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res, "trip")
}

// CountActiveBookings counts non-cancelled bookings on a trip.
func (r TripRepo) CountActiveBookings(ctx context.Context, tripID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db(), &n, `SELECT COUNT(*) FROM bookings WHERE trip_id=? AND status <> 'cancelled'`, tripID)
	return n, err
}
