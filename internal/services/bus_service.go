package services

import (
	"context"
	"fmt"
	"strings"

	intconfig "busgo/internal/config"
	intdb "busgo/internal/db"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/jmoiron/sqlx"
)

type BusService struct {
	DB        *sqlx.DB
	Buses     repositories.BusRepo
	RequestID string
}

// BusInput carries bus fields; nil means absent.
type BusInput struct {
	Name         *string
	NumberPlate  *string
	TotalSeats   *int
	OperatorName *string
	Category     *string
}

func (s BusService) db() *sqlx.DB {
	if s.DB != nil {
		return s.DB
	}
	if s.Buses.DB != nil {
		return s.Buses.DB
	}
	return intconfig.DB
}

func (s BusService) buses() repositories.BusRepo {
	if s.Buses.DB != nil {
		return s.Buses
	}
	if s.DB != nil {
		return repositories.BusRepo{DB: s.DB}
	}
	return repositories.BusRepo{DB: intconfig.DB}
}

func (s BusService) List(ctx context.Context) ([]models.Bus, error) {
	return s.buses().List(ctx)
}

func (s BusService) Get(ctx context.Context, id int64) (models.Bus, error) {
	return s.buses().GetByID(ctx, id)
}

func (s BusService) Create(ctx context.Context, in BusInput) (models.Bus, error) {
	var b models.Bus
	applyBusInput(&b, in)
	if err := validateBus(b); err != nil {
		return b, err
	}
	id, err := s.buses().Create(ctx, b)
	if err != nil {
		return b, busWriteErr(err)
	}
	utils.LogEvent(s.RequestID, "bus", "create", fmt.Sprintf("bus_id=%d plate=%s seats=%d", id, b.NumberPlate, b.TotalSeats))
	return s.buses().GetByID(ctx, id)
}

// Update refuses to shrink a bus below the seats already sold on any of
// its trips. The bus row stays locked from the check to the write, so a
// concurrent booking on one of its trips waits for the new capacity.
func (s BusService) Update(ctx context.Context, id int64, in BusInput) (models.Bus, error) {
	conn := s.db()
	if conn == nil {
		return models.Bus{}, domain.InternalError{Msg: "database not connected"}
	}
	var b models.Bus
	err := intdb.WithinTx(ctx, conn, func(tx *sqlx.Tx) error {
		var err error
		b, err = s.buses().GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		prevSeats := b.TotalSeats
		applyBusInput(&b, in)
		if err := validateBus(b); err != nil {
			return err
		}
		if b.TotalSeats < prevSeats {
			booked, err := s.buses().MaxSeatsBooked(ctx, tx, id)
			if err != nil {
				return domain.InternalError{Err: err}
			}
			if b.TotalSeats < booked {
				return domain.ConflictError{Resource: "bus", Msg: fmt.Sprintf("a trip already has %d seat(s) booked", booked)}
			}
		}
		return s.buses().Update(ctx, tx, b)
	})
	if err != nil {
		if domain.IsValidation(err) || domain.IsConflict(err) || domain.IsInternal(err) {
			return b, err
		}
		return b, busWriteErr(err)
	}
	utils.LogEvent(s.RequestID, "bus", "update", fmt.Sprintf("bus_id=%d seats=%d", id, b.TotalSeats))
	return s.buses().GetByID(ctx, id)
}

func (s BusService) Delete(ctx context.Context, id int64) error {
	if _, err := s.buses().GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.buses().CountTrips(ctx, id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if n > 0 {
		return domain.ConflictError{Resource: "bus", Msg: fmt.Sprintf("%d trip(s) still use this bus", n)}
	}
	if err := s.buses().Delete(ctx, id); err != nil {
		return busWriteErr(err)
	}
	utils.LogEvent(s.RequestID, "bus", "delete", fmt.Sprintf("bus_id=%d", id))
	return nil
}

func applyBusInput(b *models.Bus, in BusInput) {
	if in.Name != nil {
		b.Name = utils.NormalizeSpace(*in.Name)
	}
	if in.NumberPlate != nil {
		b.NumberPlate = strings.ToUpper(utils.NormalizeSpace(*in.NumberPlate))
	}
	if in.TotalSeats != nil {
		b.TotalSeats = *in.TotalSeats
	}
	if in.OperatorName != nil {
		b.OperatorName = optional(*in.OperatorName)
	}
	if in.Category != nil {
		b.Category = optional(*in.Category)
	}
}

func validateBus(b models.Bus) error {
	if b.Name == "" {
		return domain.ValidationError{Field: "name", Msg: "required"}
	}
	if b.NumberPlate == "" {
		return domain.ValidationError{Field: "numberPlate", Msg: "required"}
	}
	if b.TotalSeats <= 0 {
		return domain.ValidationError{Field: "totalSeats", Msg: "must be positive"}
	}
	return nil
}

func busWriteErr(err error) error {
	switch {
	case repositories.IsDuplicate(err):
		return domain.ConflictError{Resource: "bus", Msg: "number plate already registered", Err: err}
	case repositories.IsReferenced(err):
		return domain.ConflictError{Resource: "bus", Msg: "bus is still referenced by trips", Err: err}
	case domain.IsNotFound(err):
		return err
	}
	return domain.InternalError{Msg: "bus storage failed", Err: err}
}

func optional(v string) *string {
	v = utils.NormalizeSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
