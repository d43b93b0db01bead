package repositories

import (
	"context"

	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const busColumns = `id, name, number_plate, total_seats, operator_name, category, created_at, updated_at`

type BusRepo struct {
	DB *sqlx.DB
}

func (r BusRepo) db() *sqlx.DB { return orGlobal(r.DB) }

func (r BusRepo) List(ctx context.Context) ([]models.Bus, error) {
	out := []models.Bus{}
	err := sqlx.SelectContext(ctx, r.db(), &out, `SELECT `+busColumns+` FROM buses ORDER BY id ASC`)
	return out, err
}

func (r BusRepo) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	var b models.Bus
	err := sqlx.GetContext(ctx, r.db(), &b, `SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id)
	return b, notFound("bus", err)
}

// GetForUpdate row-locks the bus inside tx. Booking writes lock the same
// row through LockForBooking, so capacity changes and bookings serialize.
func (r BusRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (models.Bus, error) {
	var b models.Bus
	err := sqlx.GetContext(ctx, tx, &b, `SELECT `+busColumns+` FROM buses WHERE id=? FOR UPDATE`, id)
	return b, notFound("bus", err)
}

func (r BusRepo) Create(ctx context.Context, b models.Bus) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO buses (name, number_plate, total_seats, operator_name, category)
		VALUES (?, ?, ?, ?, ?)
	`, b.Name, b.NumberPlate, b.TotalSeats, b.OperatorName, b.Category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepo) Update(ctx context.Context, tx *sqlx.Tx, b models.Bus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE buses
		SET name=?, number_plate=?, total_seats=?, operator_name=?, category=?
		WHERE id=?
	`, b.Name, b.NumberPlate, b.TotalSeats, b.OperatorName, b.Category, b.ID)
	if err != nil {
		return err
	}
	_, err = res.RowsAffected()
	return err
}

func (r BusRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM buses WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res, "bus")
}

func (r BusRepo) CountTrips(ctx context.Context, busID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db(), &n, `SELECT COUNT(*) FROM trips WHERE bus_id=?`, busID)
	return n, err
}

// MaxSeatsBooked returns the highest non-cancelled seat total across the
// bus's trips, used to refuse shrinking a bus below existing bookings.
func (r BusRepo) MaxSeatsBooked(ctx context.Context, tx *sqlx.Tx, busID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, tx, &n, `
		SELECT COALESCE(MAX(booked), 0) FROM (
			SELECT SUM(bk.seats) AS booked
			FROM bookings bk
			JOIN trips t ON t.id = bk.trip_id
			WHERE t.bus_id = ? AND bk.status <> 'cancelled'
			GROUP BY bk.trip_id
		) x
	`, busID)
	return n, err
}
