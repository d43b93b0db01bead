package services

import (
	"context"
	"testing"
	"time"

	"busgo/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

var routeCols = []string{"id", "route_number", "category", "origin", "destination", "stops", "created_at", "updated_at"}

func TestRouteUpdatePropagatesToTrips(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM routes WHERE id=\\? LIMIT 1 FOR UPDATE").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(2, "R-01", "AC", "Colombo", "Kandy", []byte(`["Colombo","Kandy"]`), now, now))
	mock.ExpectQuery("SELECT id FROM trips WHERE route_id=\\? ORDER BY id FOR UPDATE").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))
	mock.ExpectQuery("SELECT bk.id, bk.boarding_stop, bk.alighting_stop FROM bookings bk JOIN trips t").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "boarding_stop", "alighting_stop"}).AddRow(31, "Colombo", "Kandy"))
	mock.ExpectExec("UPDATE routes").
		WithArgs("R-01", nil, "Colombo", "Kandy", `["Colombo","Kegalle","Kandy"]`, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE trips SET route_number=\\?, origin=\\?, destination=\\?, stops=\\? WHERE route_id=\\?").
		WithArgs("R-01", "Colombo", "Kandy", `["Colombo","Kegalle","Kandy"]`, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM routes WHERE id=\\? LIMIT 1").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(2, "R-01", nil, "Colombo", "Kandy", []byte(`["Colombo","Kegalle","Kandy"]`), now, now))

	empty := ""
	svc := RouteService{DB: conn}
	rt, err := svc.Update(context.Background(), 2, RouteInput{
		Category:    &empty,
		CategorySet: true,
		Stops:       "Colombo, Kegalle ,  , Kandy",
		StopsSet:    true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rt.Category != nil || len(rt.Stops) != 3 {
		t.Fatalf("unexpected route %+v", rt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteCreateValidation(t *testing.T) {
	svc := RouteService{}
	num, origin, dest := "R-02", "Colombo", "Galle"
	bad := "LUX"

	_, err := svc.Create(context.Background(), RouteInput{
		RouteNumber: &num, Origin: &origin, Destination: &dest,
		Category: &bad, CategorySet: true,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for category, got %v", err)
	}

	_, err = svc.Create(context.Background(), RouteInput{
		RouteNumber: &num, Origin: &origin, Destination: &dest,
		Stops: []any{"Colombo", "colombo", "Galle"}, StopsSet: true,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate stop, got %v", err)
	}
}

func TestRouteDeleteRefusedWhileTripsExist(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM routes WHERE id=\\? LIMIT 1").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(routeCols).AddRow(2, "R-01", nil, "Colombo", "Kandy", nil, now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips WHERE route_id=\\?").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))

	svc := RouteService{DB: conn}
	if err := svc.Delete(context.Background(), 2); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteUpdateRefusesStopsThatStrandBookings(t *testing.T) {
	conn, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM routes WHERE id=\\? LIMIT 1 FOR UPDATE").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(routeCols).
			AddRow(2, "R-01", nil, "Colombo", "Kandy", []byte(`["Colombo","Kegalle","Kandy"]`), now, now))
	mock.ExpectQuery("SELECT id FROM trips WHERE route_id=\\? ORDER BY id FOR UPDATE").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("FROM bookings bk JOIN trips t").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "boarding_stop", "alighting_stop"}).
			AddRow(31, "Colombo", "Kandy").
			AddRow(32, "Kegalle", nil))
	mock.ExpectRollback()

	svc := RouteService{DB: conn}
	_, err := svc.Update(context.Background(), 2, RouteInput{Stops: []any{"Colombo", "Kandy"}, StopsSet: true})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
