package handlers

import (
	"fmt"
	"net/http"

	"busgo/internal/domain/models"
	"busgo/internal/http/middleware"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	TripID        int64  `json:"tripId" binding:"required,min=1"`
	Seats         int    `json:"seats"`
	BoardingStop  string `json:"boardingStop" binding:"max=100"`
	AlightingStop string `json:"alightingStop" binding:"max=100"`
}

type updateBookingRequest struct {
	Seats  *int    `json:"seats"`
	Status *string `json:"status" binding:"omitempty,booking_status"`
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := bookingService(c).Create(c.Request.Context(), middleware.CurrentUser(c), services.CreateBookingInput{
		TripID:        req.TripID,
		Seats:         req.Seats,
		BoardingStop:  req.BoardingStop,
		AlightingStop: req.AlightingStop,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings
func ListBookings(c *gin.Context) {
	out, err := bookingService(c).List(c.Request.Context(), middleware.CurrentUser(c), pageFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := bookingService(c).Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id
func UpdateBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	upd := models.BookingUpdate{Seats: req.Seats}
	if req.Status != nil {
		st := models.BookingStatus(*req.Status)
		upd.Status = &st
	}
	b, err := bookingService(c).Update(c.Request.Context(), middleware.CurrentUser(c), id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := bookingService(c).Cancel(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/bookings/:id
func DeleteBooking(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := bookingService(c).Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}

// GET /api/bookings/:id/ticket
func BookingTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := docsService(c).GenerateETicket(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
