package services

import (
	"context"
	"testing"
	"time"

	"busgo/internal/domain"
	"busgo/internal/domain/models"

	"github.com/shopspring/decimal"
)

func ticketLoader(status models.BookingStatus, owner int64) func(context.Context, int64) (models.BookingDetail, error) {
	return func(_ context.Context, id int64) (models.BookingDetail, error) {
		boarding, alighting := "Colombo", "Kegalle"
		route := "R-01"
		name := "Tester"
		dep := time.Date(2025, 1, 1, 2, 30, 0, 0, time.UTC)
		return models.BookingDetail{
			Booking: models.Booking{
				ID:            id,
				TripID:        7,
				UserID:        &owner,
				Seats:         2,
				Status:        status,
				BoardingStop:  &boarding,
				AlightingStop: &alighting,
				TotalPrice:    decimal.NewNullDecimal(decimal.RequireFromString("900.00")),
			},
			Origin:        "Colombo",
			Destination:   "Kandy",
			RouteNumber:   &route,
			DepartureTime: dep,
			ArrivalTime:   dep.Add(3 * time.Hour),
			TripPrice:     decimal.RequireFromString("900.00"),
			BusName:       "Express Luxury",
			NumberPlate:   "CAB-1234",
			UserName:      &name,
		}, nil
	}
}

func TestDocsServiceGenerate(t *testing.T) {
	svc := DocsService{Loader: ticketLoader(models.BookingConfirmed, 3)}
	rc := domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}

	pdf, filename, err := svc.GenerateETicket(context.Background(), rc, 11)
	if err != nil {
		t.Fatalf("GenerateETicket returned error: %v", err)
	}
	if len(pdf) == 0 || filename == "" {
		t.Fatalf("GenerateETicket returned empty data")
	}
	if string(pdf[:4]) != "%PDF" {
		t.Fatalf("output is not a PDF: %q", pdf[:8])
	}
	if filename != "ETICKET_11_Colombo_Kegalle.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceRejectsCancelledBooking(t *testing.T) {
	svc := DocsService{Loader: ticketLoader(models.BookingCancelled, 3)}
	rc := domain.RequestContext{UserID: 3, Role: domain.RoleCustomer}

	if _, _, err := svc.GenerateETicket(context.Background(), rc, 11); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for cancelled booking, got %v", err)
	}
}

func TestDocsServiceRejectsOtherCustomer(t *testing.T) {
	svc := DocsService{Loader: ticketLoader(models.BookingConfirmed, 3)}
	rc := domain.RequestContext{UserID: 4, Role: domain.RoleCustomer}

	if _, _, err := svc.GenerateETicket(context.Background(), rc, 11); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}
	if _, _, err := svc.GenerateETicket(context.Background(), admin, 11); err != nil {
		t.Fatalf("admin should get any ticket, got %v", err)
	}
}
