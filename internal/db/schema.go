package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// Relationships:
//
//	buses  1 ── * trips     (trips.bus_id,   required, RESTRICT)
//	routes 1 ── * trips     (trips.route_id, optional, SET NULL)
//	trips  1 ── * bookings  (bookings.trip_id, required, CASCADE)
//	users  1 ── * bookings  (bookings.user_id, optional, SET NULL)
var schema = []struct {
	table string
	ddl   string
}{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role ENUM('customer','admin') NOT NULL DEFAULT 'customer',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	number_plate VARCHAR(50) NOT NULL,
	total_seats INT NOT NULL,
	operator_name VARCHAR(255) NULL,
	category VARCHAR(20) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_buses_plate (number_plate),
	CONSTRAINT chk_buses_seats CHECK (total_seats > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_number VARCHAR(50) NOT NULL,
	category ENUM('XL','AC','S','N') NULL,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	stops JSON NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_routes_number (route_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_id BIGINT NOT NULL,
	route_id BIGINT NULL,
	route_number VARCHAR(50) NULL,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	stops JSON NULL,
	departure_time DATETIME NOT NULL,
	arrival_time DATETIME NOT NULL,
	price DECIMAL(10,2) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_trips_departure (departure_time),
	CONSTRAINT fk_trips_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE RESTRICT,
	CONSTRAINT fk_trips_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	user_id BIGINT NULL,
	seats INT NOT NULL,
	status ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
	boarding_stop VARCHAR(255) NULL,
	alighting_stop VARCHAR(255) NULL,
	total_price DECIMAL(10,2) NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_bookings_trip_status (trip_id, status),
	CONSTRAINT fk_bookings_trip FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE,
	CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
	CONSTRAINT chk_bookings_seats CHECK (seats BETWEEN 1 AND 10)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// Tables lists managed tables in creation order.
func Tables() []string {
	out := make([]string, 0, len(schema))
	for _, s := range schema {
		out = append(out, s.table)
	}
	return out
}

// addedColumns are section-fare columns that databases created before
// section bookings existed lack.
var addedColumns = []struct {
	table, column, ddl string
}{
	{"trips", "stops", `ALTER TABLE trips ADD COLUMN stops JSON NULL AFTER destination`},
	{"bookings", "boarding_stop", `ALTER TABLE bookings ADD COLUMN boarding_stop VARCHAR(255) NULL AFTER status`},
	{"bookings", "alighting_stop", `ALTER TABLE bookings ADD COLUMN alighting_stop VARCHAR(255) NULL AFTER boarding_stop`},
	{"bookings", "total_price", `ALTER TABLE bookings ADD COLUMN total_price DECIMAL(10,2) NULL AFTER alighting_stop`},
}

// Migrate creates any missing table, parents before children, then adds
// missing section-fare columns to existing tables.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	for _, s := range schema {
		if HasTable(ctx, conn, s.table) {
			continue
		}
		if _, err := conn.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
		log.Printf("[DB] created table %s", s.table)
	}
	for _, c := range addedColumns {
		if HasColumn(ctx, conn, c.table, c.column) {
			continue
		}
		if _, err := conn.ExecContext(ctx, c.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", c.table, c.column, err)
		}
		log.Printf("[DB] added column %s.%s", c.table, c.column)
	}
	return nil
}
