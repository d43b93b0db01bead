package handlers

import (
	"net/http"

	intconfig "busgo/internal/config"
	"busgo/internal/http/middleware"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
)

type busRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=100"`
	NumberPlate  *string `json:"numberPlate" binding:"omitempty,max=20"`
	TotalSeats   *int    `json:"totalSeats" binding:"omitempty,min=1,max=200"`
	OperatorName *string `json:"operatorName" binding:"omitempty,max=100"`
	Category     *string `json:"category" binding:"omitempty,route_category"`
}

func (r busRequest) input() services.BusInput {
	return services.BusInput{
		Name:         r.Name,
		NumberPlate:  r.NumberPlate,
		TotalSeats:   r.TotalSeats,
		OperatorName: r.OperatorName,
		Category:     r.Category,
	}
}

func busService(c *gin.Context) services.BusService {
	return services.BusService{DB: intconfig.DB, RequestID: middleware.GetRequestID(c)}
}

// GET /api/buses
func ListBuses(c *gin.Context) {
	out, err := busService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/buses/:id
func GetBus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := busService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/buses
func CreateBus(c *gin.Context) {
	var req busRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := busService(c).Create(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// PUT /api/buses/:id
func UpdateBus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req busRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := busService(c).Update(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/buses/:id
func DeleteBus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := busService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bus deleted"})
}
