package services

import (
	"context"
	"testing"

	"busgo/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var busCols = []string{"id", "name", "number_plate", "total_seats", "operator_name", "category"}

func expectBusLock(mock sqlmock.Sqlmock, id int64, seats int) {
	mock.ExpectQuery("FROM buses WHERE id=\\? FOR UPDATE").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(id, "Express", "NB-1234", seats, nil, nil))
}

func TestBusUpdateRefusesShrinkBelowBooked(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	expectBusLock(mock, 1, 45)
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(booked\\), 0\\)").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(40))
	mock.ExpectRollback()

	seats := 30
	svc := BusService{DB: conn}
	_, err := svc.Update(context.Background(), 1, BusInput{TotalSeats: &seats})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBusUpdateShrinksToBookedSeats(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	expectBusLock(mock, 1, 45)
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(booked\\), 0\\)").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(40))
	mock.ExpectExec("UPDATE buses").
		WithArgs("Express", "NB-1234", int64(40), nil, nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM buses WHERE id=\\? LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(1, "Express", "NB-1234", 40, nil, nil))

	seats := 40
	svc := BusService{DB: conn}
	b, err := svc.Update(context.Background(), 1, BusInput{TotalSeats: &seats})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.TotalSeats != 40 {
		t.Fatalf("total seats = %d, want 40", b.TotalSeats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBusUpdateGrowSkipsBookedCheck(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	expectBusLock(mock, 1, 45)
	mock.ExpectExec("UPDATE buses").
		WithArgs("Express", "NB-1234", int64(50), nil, nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM buses WHERE id=\\? LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(1, "Express", "NB-1234", 50, nil, nil))

	seats := 50
	if _, err := (BusService{DB: conn}).Update(context.Background(), 1, BusInput{TotalSeats: &seats}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBusDeleteRefusedWhileTripsExist(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectQuery("FROM buses WHERE id=\\? LIMIT 1").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(busCols).AddRow(1, "Express", "NB-1234", 45, nil, nil))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trips WHERE bus_id=\\?").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	if err := (BusService{DB: conn}).Delete(context.Background(), 1); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBusCreateDuplicatePlate(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO buses").
		WithArgs("Express", "NB-1234", int64(45), nil, nil).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'NB-1234'"})

	name, plate, seats := "Express", " nb-1234 ", 45
	_, err := (BusService{DB: conn}).Create(context.Background(), BusInput{Name: &name, NumberPlate: &plate, TotalSeats: &seats})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
