package handlers

import (
	"net/http"

	intconfig "busgo/internal/config"
	"busgo/internal/http/middleware"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
)

type updateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,max=100"`
	Role *string `json:"role" binding:"omitempty,oneof=admin customer"`
}

func userService(c *gin.Context) services.UserService {
	return services.UserService{DB: intconfig.DB, RequestID: middleware.GetRequestID(c)}
}

// GET /api/admin/stats
func AdminStats(c *gin.Context) {
	st, err := services.StatsService{DB: intconfig.DB}.Dashboard(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/admin/users
func ListUsers(c *gin.Context) {
	out, err := userService(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/admin/users/:id
func GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := userService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /api/admin/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := userService(c).Update(c.Request.Context(), id, req.Name, req.Role)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/admin/users/:id
func DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := userService(c).Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
