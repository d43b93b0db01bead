package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/events"
	"busgo/internal/http/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type fixedUser domain.RequestContext

func (u fixedUser) Parse(string) (domain.RequestContext, error) { return domain.RequestContext(u), nil }

func bookingEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	SetPublisher(&events.Recorder{})
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Auth(fixedUser{UserID: 3, Role: domain.RoleCustomer}))
	r.POST("/api/bookings", middleware.RequireAuth(), CreateBooking)
	r.PUT("/api/bookings/:id", middleware.RequireAuth(), UpdateBooking)
	return r
}

func TestCreateBookingCapacityConflict(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer raw.Close()
	intconfig.DB = sqlx.NewDb(raw, "mysql")
	defer func() { intconfig.DB = nil }()

	dep := time.Date(2025, 1, 1, 2, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bus_id", "route_id", "route_number", "origin", "destination", "stops",
			"departure_time", "arrival_time", "price", "created_at", "updated_at", "total_seats",
		}).AddRow(7, 1, nil, nil, "Colombo", "Kandy", nil, dep, dep.Add(3*time.Hour), "900.00", dep, dep, 45))
	mock.ExpectQuery("SELECT id, seats, status FROM bookings").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seats", "status"}).AddRow(1, 40, "confirmed"))
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"tripId":7,"seats":6}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	bookingEngine().ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"availableSeats":5`) {
		t.Fatalf("missing availableSeats in %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingRequiresTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{"seats":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	bookingEngine().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestUpdateBookingRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/bookings/5", strings.NewReader(`{"status":"boarded"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	bookingEngine().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "booking_status") {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}
