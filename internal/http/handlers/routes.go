package handlers

import (
	"encoding/json"
	"net/http"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/http/middleware"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
)

// routeRequest keeps category and stops raw so an explicit null can be told
// apart from an absent key.
type routeRequest struct {
	RouteNumber *string         `json:"routeNumber" binding:"omitempty,max=32"`
	Category    json.RawMessage `json:"category"`
	Origin      *string         `json:"origin" binding:"omitempty,max=100"`
	Destination *string         `json:"destination" binding:"omitempty,max=100"`
	Stops       json.RawMessage `json:"stops"`
}

func (r routeRequest) input() (services.RouteInput, error) {
	in := services.RouteInput{
		RouteNumber: r.RouteNumber,
		Origin:      r.Origin,
		Destination: r.Destination,
	}
	if len(r.Category) > 0 {
		in.CategorySet = true
		var cat *string
		if err := json.Unmarshal(r.Category, &cat); err != nil {
			return in, domain.ValidationError{Field: "category", Msg: "must be a string or null"}
		}
		in.Category = cat
	}
	stops, set, err := rawStops(r.Stops)
	if err != nil {
		return in, err
	}
	in.Stops, in.StopsSet = stops, set
	return in, nil
}

// rawStops decodes a stops value that may be a list, a comma-separated
// string or null.
func rawStops(raw json.RawMessage) (any, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, true, domain.ValidationError{Field: "stops", Msg: "must be a list or comma-separated string"}
	}
	return v, true, nil
}

func routeService(c *gin.Context) services.RouteService {
	return services.RouteService{DB: intconfig.DB, RequestID: middleware.GetRequestID(c)}
}

// GET /api/routes
func ListRoutes(c *gin.Context) {
	out, err := routeService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/routes/:id
func GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rt, err := routeService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rt, err := routeService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rt)
}

// PUT /api/routes/:id
func UpdateRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	rt, err := routeService(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// DELETE /api/routes/:id
func DeleteRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := routeService(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}
