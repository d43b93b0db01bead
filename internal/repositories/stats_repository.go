package repositories

import (
	"context"

	"busgo/internal/domain/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type StatusCount struct {
	Status models.BookingStatus `json:"status" db:"status"`
	Count  int                  `json:"count" db:"count"`
}

type Totals struct {
	Buses    int `json:"totalBuses" db:"buses"`
	Routes   int `json:"totalRoutes" db:"routes"`
	Trips    int `json:"totalTrips" db:"trips"`
	Bookings int `json:"totalBookings" db:"bookings"`
	Users    int `json:"totalUsers" db:"users"`
}

type StatsRepo struct {
	DB *sqlx.DB
}

func (r StatsRepo) db() *sqlx.DB { return orGlobal(r.DB) }

func (r StatsRepo) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := sqlx.GetContext(ctx, r.db(), &t, `
		SELECT
			(SELECT COUNT(*) FROM buses) AS buses,
			(SELECT COUNT(*) FROM routes) AS routes,
			(SELECT COUNT(*) FROM trips) AS trips,
			(SELECT COUNT(*) FROM bookings) AS bookings,
			(SELECT COUNT(*) FROM users) AS users
	`)
	return t, err
}

// Revenue sums confirmed bookings, using the stored section price when
// present and seats x trip price otherwise.
func (r StatsRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := sqlx.GetContext(ctx, r.db(), &total, `
		SELECT SUM(COALESCE(bk.total_price, bk.seats * t.price))
		FROM bookings bk
		JOIN trips t ON t.id = bk.trip_id
		WHERE bk.status = 'confirmed'
	`)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal.Round(2), nil
}

func (r StatsRepo) BookingsByStatus(ctx context.Context) ([]StatusCount, error) {
	out := []StatusCount{}
	err := sqlx.SelectContext(ctx, r.db(), &out, `SELECT status, COUNT(*) AS count FROM bookings GROUP BY status ORDER BY status`)
	return out, err
}

func (r StatsRepo) RecentBookings(ctx context.Context, limit int) ([]models.BookingDetail, error) {
	out := []models.BookingDetail{}
	err := sqlx.SelectContext(ctx, r.db(), &out, bookingDetailSelect+` ORDER BY bk.created_at DESC, bk.id DESC LIMIT ?`, limit)
	return out, err
}
