package handlers

import (
	"errors"
	"strings"

	"busgo/internal/domain/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the booking_status and route_category tags to
// gin's binding validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		return models.BookingStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("route_category", func(fl validator.FieldLevel) bool {
		raw := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		return raw == "" || models.RouteCategory(raw).Valid()
	})
}
