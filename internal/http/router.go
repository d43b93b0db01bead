package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"
	"busgo/internal/events"
	h "busgo/internal/http/handlers"
	"busgo/internal/http/middleware"
	"busgo/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators built in main and shared by handlers.
type Deps struct {
	Auth      services.AuthService
	Publisher events.Publisher
	Redis     *redis.Client
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	h.SetAuth(deps.Auth)
	h.SetPublisher(deps.Publisher)
	if env.AppTimezone != "" {
		loc, err := time.LoadLocation(env.AppTimezone)
		if err != nil {
			log.Printf("warning: unknown timezone %q, using UTC+05:30: %v", env.AppTimezone, err)
		} else {
			h.SetLocation(loc)
		}
	}
	if err := h.RegisterValidators(); err != nil {
		log.Printf("warning: custom validators not registered: %v", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Auth(deps.Auth), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))
	if env.MetricsEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	admin := middleware.RequireRoles(domain.RoleAdmin)
	authed := middleware.RequireAuth()
	idem := middleware.Idempotency(deps.Redis)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/endpoints", h.Endpoints)

		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", authed, h.Me)

		buses := api.Group("/buses")
		buses.GET("", h.ListBuses)
		buses.GET("/:id", h.GetBus)
		buses.POST("", admin, h.CreateBus)
		buses.PUT("/:id", admin, h.UpdateBus)
		buses.DELETE("/:id", admin, h.DeleteBus)

		routes := api.Group("/routes")
		routes.GET("", h.ListRoutes)
		routes.GET("/:id", h.GetRoute)
		routes.POST("", admin, h.CreateRoute)
		routes.PUT("/:id", admin, h.UpdateRoute)
		routes.DELETE("/:id", admin, h.DeleteRoute)

		trips := api.Group("/trips")
		trips.GET("", h.ListTrips)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/availability", h.TripAvailability)
		trips.POST("/:id/quote", h.QuoteTrip)
		trips.POST("", admin, h.CreateTrip)
		trips.PUT("/:id", admin, h.UpdateTrip)
		trips.DELETE("/:id", admin, h.DeleteTrip)

		bookings := api.Group("/bookings", authed)
		bookings.POST("", idem, h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", idem, h.UpdateBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.GET("/:id/ticket", h.BookingTicket)

		adm := api.Group("/admin", admin)
		adm.GET("/stats", h.AdminStats)
		adm.GET("/users", h.ListUsers)
		adm.GET("/users/:id", h.GetUser)
		adm.PUT("/users/:id", h.UpdateUser)
		adm.DELETE("/users/:id", h.DeleteUser)
	}

	h.SetRouter(r)
	return r
}
