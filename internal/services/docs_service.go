package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking e-tickets as PDF.
type DocsService struct {
	Bookings  repositories.BookingRepo
	Location  *time.Location
	RequestID string
	Loader    func(context.Context, int64) (models.BookingDetail, error)
}

func (s DocsService) load(ctx context.Context, id int64) (models.BookingDetail, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id)
	}
	repo := s.Bookings
	if repo.DB == nil {
		repo = repositories.BookingRepo{DB: intconfig.DB}
	}
	return repo.GetDetail(ctx, id)
}

// GenerateETicket returns the PDF bytes and a download filename. Only the
// booking's owner or an admin may fetch it, and only while it is confirmed.
func (s DocsService) GenerateETicket(ctx context.Context, rc domain.RequestContext, bookingID int64) ([]byte, string, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if err := authorizeBooking(rc, d.Booking); err != nil {
		return nil, "", err
	}
	if d.Status != models.BookingConfirmed {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("ticket unavailable for %s booking", d.Status)}
	}
	loc := s.Location
	if loc == nil {
		loc = utils.Colombo
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildETicketPDF(d, loc)
}

func buildETicketPDF(d models.BookingDetail, loc *time.Location) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	from, to := d.Origin, d.Destination
	if d.BoardingStop != nil {
		from = *d.BoardingStop
	}
	if d.AlightingStop != nil {
		to = *d.AlightingStop
	}
	total := d.TotalPrice.Decimal
	if !d.TotalPrice.Valid {
		total = utils.FlatFare(d.TripPrice, d.Seats)
	}

	routeNo := "-"
	if d.RouteNumber != nil {
		routeNo = *d.RouteNumber
	}
	passenger := "-"
	if d.UserName != nil {
		passenger = *d.UserName
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger      : %s", safe(passenger, "-")),
		fmt.Sprintf("Route          : %s (%s -> %s)", routeNo, safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Travelling     : %s -> %s", safe(from, "-"), safe(to, "-")),
		fmt.Sprintf("Departure      : %s", utils.FormatDateTime(d.DepartureTime, loc)),
		fmt.Sprintf("Arrival        : %s", utils.FormatDateTime(d.ArrivalTime, loc)),
		fmt.Sprintf("Bus            : %s (%s)", safe(d.BusName, "-"), safe(d.NumberPlate, "-")),
		fmt.Sprintf("Seats          : %d", d.Seats),
		fmt.Sprintf("Fare           : %s", utils.FormatRupees(total)),
		fmt.Sprintf("Booking Code   : #%d", d.ID),
		fmt.Sprintf("Ticket Code    : TCK-%d-%d", d.TripID, d.ID),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d seat(s) on this trip only. Please show this ticket when boarding.", d.Seats), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", d.ID, safeFilenamePart(from+"_"+to))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
