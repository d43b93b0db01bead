package handlers

import (
	"sync"
	"time"

	intconfig "busgo/internal/config"
	"busgo/internal/events"
	"busgo/internal/http/middleware"
	"busgo/internal/services"
	"busgo/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	depsMu    sync.RWMutex
	auth      services.AuthService
	publisher events.Publisher = events.LogPublisher{}
	location                   = utils.Colombo
)

// SetAuth stores the token signer/verifier used by auth handlers.
func SetAuth(a services.AuthService) {
	depsMu.Lock()
	defer depsMu.Unlock()
	auth = a
}

// SetPublisher stores the booking event sink. nil falls back to logging.
func SetPublisher(p events.Publisher) {
	depsMu.Lock()
	defer depsMu.Unlock()
	if p == nil {
		p = events.LogPublisher{}
	}
	publisher = p
}

// SetLocation sets the timezone used for dates in queries and tickets.
func SetLocation(loc *time.Location) {
	depsMu.Lock()
	defer depsMu.Unlock()
	if loc != nil {
		location = loc
	}
}

func authService(c *gin.Context) services.AuthService {
	depsMu.RLock()
	a := auth
	depsMu.RUnlock()
	a.DB = intconfig.DB
	a.RequestID = middleware.GetRequestID(c)
	return a
}

func bookingService(c *gin.Context) services.BookingService {
	depsMu.RLock()
	p := publisher
	depsMu.RUnlock()
	return services.BookingService{DB: intconfig.DB, Publisher: p, RequestID: middleware.GetRequestID(c)}
}

func tripService(c *gin.Context) services.TripService {
	depsMu.RLock()
	loc := location
	depsMu.RUnlock()
	return services.TripService{DB: intconfig.DB, Location: loc, RequestID: middleware.GetRequestID(c)}
}

func docsService(c *gin.Context) services.DocsService {
	depsMu.RLock()
	loc := location
	depsMu.RUnlock()
	return services.DocsService{Location: loc, RequestID: middleware.GetRequestID(c)}
}

func currentLocation() *time.Location {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return location
}
