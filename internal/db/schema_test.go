package db

import (
	"context"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestTablesParentsFirst(t *testing.T) {
	want := []string{"users", "buses", "routes", "trips", "bookings"}
	if got := Tables(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Tables() = %v, want %v", got, want)
	}
}

func TestMigrateCreatesOnlyMissing(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer raw.Close()
	conn := sqlx.NewDb(raw, "mysql")

	for _, table := range Tables() {
		q := mock.ExpectQuery("information_schema\\.tables").WithArgs(table)
		if table == "bookings" {
			q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS bookings").WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow(table))
	}
	for _, c := range addedColumns {
		q := mock.ExpectQuery("information_schema\\.columns").WithArgs(c.table, c.column)
		if c.column == "stops" {
			q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
			mock.ExpectExec("ALTER TABLE trips ADD COLUMN stops").WillReturnResult(sqlmock.NewResult(0, 0))
			continue
		}
		q.WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow(c.column))
	}

	if err := Migrate(context.Background(), conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
