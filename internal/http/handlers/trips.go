package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"busgo/internal/domain"
	"busgo/internal/services"
	"busgo/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type tripRequest struct {
	BusID         *int64           `json:"busId" binding:"omitempty,min=1"`
	RouteID       *int64           `json:"routeId"`
	RouteNumber   *string          `json:"routeNumber" binding:"omitempty,max=32"`
	Origin        *string          `json:"origin" binding:"omitempty,max=100"`
	Destination   *string          `json:"destination" binding:"omitempty,max=100"`
	Stops         json.RawMessage  `json:"stops"`
	DepartureTime *string          `json:"departureTime"`
	ArrivalTime   *string          `json:"arrivalTime"`
	Price         *decimal.Decimal `json:"price"`
}

func (r tripRequest) input(loc *time.Location) (services.TripInput, error) {
	in := services.TripInput{
		BusID:       r.BusID,
		RouteID:     r.RouteID,
		RouteNumber: r.RouteNumber,
		Origin:      r.Origin,
		Destination: r.Destination,
		Price:       r.Price,
	}
	stops, set, err := rawStops(r.Stops)
	if err != nil {
		return in, err
	}
	in.Stops, in.StopsSet = stops, set
	if r.DepartureTime != nil {
		t, err := utils.ParseTimestamp(*r.DepartureTime, loc)
		if err != nil {
			return in, domain.ValidationError{Field: "departureTime", Msg: "use RFC3339 or YYYY-MM-DD HH:MM:SS", Err: err}
		}
		in.DepartureTime = &t
	}
	if r.ArrivalTime != nil {
		t, err := utils.ParseTimestamp(*r.ArrivalTime, loc)
		if err != nil {
			return in, domain.ValidationError{Field: "arrivalTime", Msg: "use RFC3339 or YYYY-MM-DD HH:MM:SS", Err: err}
		}
		in.ArrivalTime = &t
	}
	return in, nil
}

type quoteRequest struct {
	Seats         int    `json:"seats"`
	BoardingStop  string `json:"boardingStop" binding:"max=100"`
	AlightingStop string `json:"alightingStop" binding:"max=100"`
}

// GET /api/trips?origin=&destination=&date=YYYY-MM-DD
func ListTrips(c *gin.Context) {
	q := services.TripQuery{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
	}
	q.BusID, _ = strconv.ParseInt(c.Query("busId"), 10, 64)
	q.RouteID, _ = strconv.ParseInt(c.Query("routeId"), 10, 64)

	out, err := tripService(c).Search(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := tripService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /api/trips/:id/availability
func TripAvailability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := tripService(c).Availability(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /api/trips/:id/quote
func QuoteTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req quoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	q, err := tripService(c).Quote(c.Request.Context(), id, req.Seats, req.BoardingStop, req.AlightingStop)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var req tripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input(currentLocation())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	t, err := tripService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// PUT /api/trips/:id
func UpdateTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req tripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input(currentLocation())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	t, err := tripService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DELETE /api/trips/:id
func DeleteTrip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := tripService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip deleted"})
}
