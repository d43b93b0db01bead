package repositories

import (
	"context"

	"busgo/internal/domain"
	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `bk.id, bk.trip_id, bk.user_id, bk.seats, bk.status, bk.boarding_stop, bk.alighting_stop,
	bk.total_price, bk.created_at, bk.updated_at`

const bookingDetailSelect = `
	SELECT ` + bookingColumns + `,
		t.origin, t.destination, t.route_number, t.departure_time, t.arrival_time, t.price AS trip_price,
		b.name AS bus_name, b.number_plate,
		u.name AS user_name, u.email AS user_email
	FROM bookings bk
	JOIN trips t ON t.id = bk.trip_id
	JOIN buses b ON b.id = t.bus_id
	LEFT JOIN users u ON u.id = bk.user_id`

type BookingRepo struct {
	DB *sqlx.DB
}

func (r BookingRepo) db() *sqlx.DB { return orGlobal(r.DB) }

// SeatClaims returns every booking's seats and status for a trip. Called
// after the trip row is locked so the snapshot stays valid until commit.
func (r BookingRepo) SeatClaims(ctx context.Context, tx *sqlx.Tx, tripID int64) ([]domain.SeatClaim, error) {
	rows := []struct {
		ID     int64                `db:"id"`
		Seats  int                  `db:"seats"`
		Status models.BookingStatus `db:"status"`
	}{}
	if err := sqlx.SelectContext(ctx, tx, &rows, `SELECT id, seats, status FROM bookings WHERE trip_id=?`, tripID); err != nil {
		return nil, err
	}
	out := make([]domain.SeatClaim, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SeatClaim{BookingID: row.ID, Seats: row.Seats, Status: row.Status})
	}
	return out, nil
}

// BookedSection is the stored section of a live booking.
type BookedSection struct {
	BookingID     int64   `db:"id"`
	BoardingStop  *string `db:"boarding_stop"`
	AlightingStop *string `db:"alighting_stop"`
}

// SectionsOnTrip lists the sections held by non-cancelled bookings on a trip.
func (r BookingRepo) SectionsOnTrip(ctx context.Context, tx *sqlx.Tx, tripID int64) ([]BookedSection, error) {
	out := []BookedSection{}
	err := sqlx.SelectContext(ctx, tx, &out, `
		SELECT id, boarding_stop, alighting_stop FROM bookings
		WHERE trip_id=? AND status <> 'cancelled'
		AND (boarding_stop IS NOT NULL OR alighting_stop IS NOT NULL)
	`, tripID)
	return out, err
}

// SectionsOnRoute is SectionsOnTrip across every trip of a route.
func (r BookingRepo) SectionsOnRoute(ctx context.Context, tx *sqlx.Tx, routeID int64) ([]BookedSection, error) {
	out := []BookedSection{}
	err := sqlx.SelectContext(ctx, tx, &out, `
		SELECT bk.id, bk.boarding_stop, bk.alighting_stop FROM bookings bk
		JOIN trips t ON t.id = bk.trip_id
		WHERE t.route_id=? AND bk.status <> 'cancelled'
		AND (bk.boarding_stop IS NOT NULL OR bk.alighting_stop IS NOT NULL)
	`, routeID)
	return out, err
}

func (r BookingRepo) Insert(ctx context.Context, tx *sqlx.Tx, b models.Booking) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (trip_id, user_id, seats, status, boarding_stop, alighting_stop, total_price)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.TripID, b.UserID, b.Seats, b.Status, b.BoardingStop, b.AlightingStop, b.TotalPrice)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateSeatsStatus writes the mutable booking fields.
func (r BookingRepo) UpdateSeatsStatus(ctx context.Context, tx *sqlx.Tx, b models.Booking) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET seats=?, status=?, total_price=? WHERE id=?
	`, b.Seats, b.Status, b.TotalPrice, b.ID)
	if err != nil {
		return err
	}
	_, err = res.RowsAffected()
	return err
}

func (r BookingRepo) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	var b models.Booking
	err := sqlx.GetContext(ctx, r.db(), &b, `SELECT `+bookingColumns+` FROM bookings bk WHERE bk.id=? LIMIT 1`, id)
	return b, notFound("booking", err)
}

// GetForUpdate re-reads and row-locks a booking inside tx.
func (r BookingRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (models.Booking, error) {
	var b models.Booking
	err := sqlx.GetContext(ctx, tx, &b, `SELECT `+bookingColumns+` FROM bookings bk WHERE bk.id=? FOR UPDATE`, id)
	return b, notFound("booking", err)
}

func (r BookingRepo) GetDetail(ctx context.Context, id int64) (models.BookingDetail, error) {
	var d models.BookingDetail
	err := sqlx.GetContext(ctx, r.db(), &d, bookingDetailSelect+` WHERE bk.id=? LIMIT 1`, id)
	return d, notFound("booking", err)
}

// List returns bookings newest first; userID 0 lists everyone's.
func (r BookingRepo) List(ctx context.Context, userID int64, page domain.Pagination) ([]models.BookingDetail, error) {
	query := bookingDetailSelect
	args := []any{}
	if userID > 0 {
		query += ` WHERE bk.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY bk.created_at DESC, bk.id DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit(), page.Offset())

	out := []models.BookingDetail{}
	err := sqlx.SelectContext(ctx, r.db(), &out, query, args...)
	return out, err
}

func (r BookingRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM bookings WHERE id=?`, id)
	if err != nil {
		return err
	}
	return affected(res, "booking")
}
