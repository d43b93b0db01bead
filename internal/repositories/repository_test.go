package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"busgo/internal/domain"
	"busgo/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

func TestMySQLErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	if !IsDuplicate(dup) || IsReferenced(dup) || IsMissingParent(dup) {
		t.Fatalf("duplicate misclassified")
	}
	if !IsReferenced(&mysql.MySQLError{Number: 1451}) || !IsMissingParent(&mysql.MySQLError{Number: 1452}) {
		t.Fatalf("foreign key errors misclassified")
	}
	if !domain.IsNotFound(notFound("trip", sql.ErrNoRows)) {
		t.Fatalf("expected not found")
	}
}

func TestSeatClaimsAndDeleteMissing(t *testing.T) {
	conn, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, seats, status FROM bookings WHERE trip_id=\\?").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seats", "status"}).
			AddRow(1, 4, "confirmed").
			AddRow(2, 3, "cancelled"))
	mock.ExpectCommit()
	mock.ExpectExec("DELETE FROM trips WHERE id=\\?").WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	claims, err := BookingRepo{DB: conn}.SeatClaims(ctx, tx, 7)
	if err != nil {
		t.Fatalf("SeatClaims: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(claims) != 2 || claims[1].Status != models.BookingCancelled || claims[0].Seats != 4 {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if err := (TripRepo{DB: conn}).Delete(ctx, 99); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRouteSyncTrips(t *testing.T) {
	conn, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE trips SET route_number=\\?, origin=\\?, destination=\\?, stops=\\? WHERE route_id=\\?").
		WithArgs("R-07", "Colombo", "Galle", `["Colombo","Kalutara","Galle"]`, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	n, err := RouteRepo{DB: conn}.SyncTrips(ctx, tx, models.Route{
		ID: 4, RouteNumber: "R-07", Origin: "Colombo", Destination: "Galle",
		Stops: models.Stops{"Colombo", "Kalutara", "Galle"},
	})
	if err != nil || n != 2 {
		t.Fatalf("SyncTrips = %d, %v", n, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
