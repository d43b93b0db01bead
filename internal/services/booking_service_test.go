package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/events"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var lockedTripCols = []string{
	"id", "bus_id", "route_id", "route_number", "origin", "destination", "stops",
	"departure_time", "arrival_time", "price", "created_at", "updated_at", "total_seats",
}

var bookingCols = []string{
	"id", "trip_id", "user_id", "seats", "status", "boarding_stop", "alighting_stop",
	"total_price", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

func expectTripLock(mock sqlmock.Sqlmock, tripID int64, totalSeats int) {
	dep := time.Date(2025, 1, 1, 2, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM trips t JOIN buses b ON b.id = t.bus_id WHERE t.id = \\? FOR UPDATE").
		WithArgs(tripID).
		WillReturnRows(sqlmock.NewRows(lockedTripCols).AddRow(
			tripID, 1, nil, "R-01", "Colombo", "Kandy", []byte(`["Colombo","Kegalle","Kandy"]`),
			dep, dep.Add(3*time.Hour), "900.00", dep, dep, totalSeats,
		))
}

func expectClaims(mock sqlmock.Sqlmock, tripID int64, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT id, seats, status FROM bookings WHERE trip_id=\\?").
		WithArgs(tripID).
		WillReturnRows(rows)
}

func TestBookingCreateLocksTripAndPricesSection(t *testing.T) {
	conn, mock := newMockDB(t)
	rec := &events.Recorder{}

	mock.ExpectBegin()
	expectTripLock(mock, 7, 45)
	expectClaims(mock, 7, sqlmock.NewRows([]string{"id", "seats", "status"}).
		AddRow(1, 40, "cancelled").
		AddRow(2, 10, "confirmed"))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(7), int64(3), int64(2), "confirmed", "Colombo", "Kegalle", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: conn, Publisher: rec}
	rc := domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}
	b, err := svc.Create(context.Background(), rc, CreateBookingInput{
		TripID: 7, Seats: 2, BoardingStop: "colombo", AlightingStop: "kegalle",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID != 11 || b.Status != models.BookingConfirmed {
		t.Fatalf("unexpected booking %+v", b)
	}
	if !b.TotalPrice.Valid || !b.TotalPrice.Decimal.Equal(decimal.RequireFromString("900.00")) {
		t.Fatalf("total price = %v, want 900.00", b.TotalPrice)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != events.BookingCreated {
		t.Fatalf("expected one booking.created event, got %+v", rec.Events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreateRejectsOverCapacity(t *testing.T) {
	conn, mock := newMockDB(t)
	rec := &events.Recorder{}

	mock.ExpectBegin()
	expectTripLock(mock, 7, 45)
	expectClaims(mock, 7, sqlmock.NewRows([]string{"id", "seats", "status"}).AddRow(1, 40, "confirmed"))
	mock.ExpectRollback()

	svc := BookingService{DB: conn, Publisher: rec}
	rc := domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}
	_, err := svc.Create(context.Background(), rc, CreateBookingInput{TripID: 7, Seats: 6})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	ce, ok := domain.AsCapacity(err)
	if !ok || ce.Available != 5 || ce.Requested != 6 {
		t.Fatalf("unexpected capacity detail %+v", ce)
	}
	if len(rec.Events) != 0 {
		t.Fatalf("no event expected on rejection")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCreateRejectsBackwardSection(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	expectTripLock(mock, 7, 45)
	mock.ExpectRollback()

	svc := BookingService{DB: conn, Publisher: &events.Recorder{}}
	_, err := svc.Create(context.Background(), domain.RequestContext{UserID: 3}, CreateBookingInput{
		TripID: 7, Seats: 1, BoardingStop: "Kandy", AlightingStop: "Colombo",
	})
	if !errors.Is(err, domain.ErrInvalidSection) || !domain.IsValidation(err) {
		t.Fatalf("expected invalid section, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingUpdateExcludesItselfFromCapacity(t *testing.T) {
	conn, mock := newMockDB(t)
	rec := &events.Recorder{}
	now := time.Now().UTC()

	current := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingCols).
			AddRow(5, 7, 3, 4, "confirmed", "Colombo", "Kandy", "3600.00", now, now)
	}
	mock.ExpectQuery("FROM bookings bk WHERE bk.id=\\? LIMIT 1").WithArgs(int64(5)).WillReturnRows(current())
	mock.ExpectBegin()
	expectTripLock(mock, 7, 10)
	mock.ExpectQuery("FROM bookings bk WHERE bk.id=\\? FOR UPDATE").WithArgs(int64(5)).WillReturnRows(current())
	// 4 seats held by this booking plus 4 by another: growing to 6 fits only
	// when its own seats are excluded.
	expectClaims(mock, 7, sqlmock.NewRows([]string{"id", "seats", "status"}).
		AddRow(5, 4, "confirmed").
		AddRow(6, 4, "confirmed"))
	mock.ExpectExec("UPDATE bookings SET seats=\\?, status=\\?, total_price=\\? WHERE id=\\?").
		WithArgs(int64(6), "confirmed", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	seats := 6
	svc := BookingService{DB: conn, Publisher: rec}
	b, err := svc.Update(context.Background(), domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}, 5, models.BookingUpdate{Seats: &seats})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !b.TotalPrice.Decimal.Equal(decimal.RequireFromString("5400")) {
		t.Fatalf("total = %s, want 5400", b.TotalPrice.Decimal)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != events.BookingUpdated {
		t.Fatalf("expected booking.updated, got %+v", rec.Events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingCancelSkipsCapacityCheck(t *testing.T) {
	conn, mock := newMockDB(t)
	rec := &events.Recorder{}
	now := time.Now().UTC()

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingCols).
			AddRow(5, 7, 3, 2, "confirmed", nil, nil, "1800.00", now, now)
	}
	mock.ExpectQuery("FROM bookings bk WHERE bk.id=\\? LIMIT 1").WithArgs(int64(5)).WillReturnRows(row())
	mock.ExpectBegin()
	expectTripLock(mock, 7, 45)
	mock.ExpectQuery("FROM bookings bk WHERE bk.id=\\? FOR UPDATE").WithArgs(int64(5)).WillReturnRows(row())
	mock.ExpectExec("UPDATE bookings SET").
		WithArgs(int64(2), "cancelled", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: conn, Publisher: rec}
	b, err := svc.Cancel(context.Background(), domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}, 5)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.Status != models.BookingCancelled {
		t.Fatalf("status = %s", b.Status)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != events.BookingCancelled {
		t.Fatalf("expected booking.cancelled, got %+v", rec.Events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingUpdateStatusNeedsAdmin(t *testing.T) {
	st := models.BookingPending
	svc := BookingService{}
	_, err := svc.Update(context.Background(), domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}, 5, models.BookingUpdate{Status: &st})
	if err != domain.ErrForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBookingGetForbidsOtherCustomer(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()
	cols := append(append([]string{}, bookingCols...),
		"origin", "destination", "route_number", "departure_time", "arrival_time", "trip_price",
		"bus_name", "number_plate", "user_name", "user_email")
	mock.ExpectQuery("FROM bookings bk JOIN trips t").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			5, 7, 3, 2, "confirmed", nil, nil, nil, now, now,
			"Colombo", "Kandy", "R-01", now, now, "900.00",
			"Express Luxury", "CAB-1234", "Owner", "owner@example.lk",
		))

	svc := BookingService{DB: conn}
	if _, err := svc.Get(context.Background(), domain.RequestContext{UserID: 4, Role: domain.RoleCustomer}, 5); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
