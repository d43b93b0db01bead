package services

import (
	"context"
	"errors"
	"fmt"

	intconfig "busgo/internal/config"
	intdb "busgo/internal/db"
	"busgo/internal/domain"
	"busgo/internal/domain/models"
	"busgo/internal/events"
	"busgo/internal/metrics"
	"busgo/internal/repositories"
	"busgo/internal/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type BookingService struct {
	DB        *sqlx.DB
	Trips     repositories.TripRepo
	Bookings  repositories.BookingRepo
	Publisher events.Publisher
	RequestID string
}

type CreateBookingInput struct {
	TripID        int64
	Seats         int
	BoardingStop  string
	AlightingStop string
}

func (s BookingService) db() *sqlx.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) trips() repositories.TripRepo {
	if s.Trips.DB != nil {
		return s.Trips
	}
	return repositories.TripRepo{DB: s.db()}
}

func (s BookingService) bookings() repositories.BookingRepo {
	if s.Bookings.DB != nil {
		return s.Bookings
	}
	return repositories.BookingRepo{DB: s.db()}
}

// Create prices the request, checks capacity and inserts a confirmed
// booking. The trip row stays locked from the seat count to the insert, so
// concurrent requests for one trip cannot oversell it.
func (s BookingService) Create(ctx context.Context, rc domain.RequestContext, in CreateBookingInput) (models.Booking, error) {
	if in.TripID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "tripId", Msg: "required"}
	}
	conn := s.db()
	if conn == nil {
		return models.Booking{}, domain.InternalError{Msg: "database not connected"}
	}

	var out models.Booking
	err := intdb.WithinTx(ctx, conn, func(tx *sqlx.Tx) error {
		trip, err := s.trips().LockForBooking(ctx, tx, in.TripID)
		if err != nil {
			return err
		}
		price, err := PriceTrip(trip.Trip, in.Seats, in.BoardingStop, in.AlightingStop)
		if err != nil {
			return err
		}
		claims, err := s.bookings().SeatClaims(ctx, tx, trip.ID)
		if err != nil {
			return err
		}
		if _, err := domain.Reserve(trip.TotalSeats, claims, in.Seats, 0); err != nil {
			return err
		}

		b := models.Booking{
			TripID:        trip.ID,
			Seats:         in.Seats,
			Status:        models.BookingConfirmed,
			BoardingStop:  price.BoardingStop,
			AlightingStop: price.AlightingStop,
			TotalPrice:    decimal.NewNullDecimal(price.Total),
		}
		if rc.UserID > 0 {
			uid := int64(rc.UserID)
			b.UserID = &uid
		}
		id, err := s.bookings().Insert(ctx, tx, b)
		if err != nil {
			return err
		}
		b.ID = id
		out = b
		return nil
	})
	if err != nil {
		s.reject(err)
		return models.Booking{}, wrapBookingErr(err)
	}

	now := utils.NowUTC()
	out.CreatedAt, out.UpdatedAt = now, now
	metrics.BookingsCreated.Inc()
	metrics.SeatsBooked.Add(float64(out.Seats))
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d trip_id=%d seats=%d total=%s", out.ID, out.TripID, out.Seats, utils.FormatMoney(out.TotalPrice.Decimal)))
	s.afterWrite(ctx, events.BookingCreated, out)
	return out, nil
}

// Update revises seats and/or status. Seat revisions re-check capacity with
// the booking itself excluded and reprice it on its stored section.
// Customers may change seats or cancel; other status changes need admin.
func (s BookingService) Update(ctx context.Context, rc domain.RequestContext, id int64, upd models.BookingUpdate) (models.Booking, error) {
	if upd.Seats == nil && upd.Status == nil {
		return models.Booking{}, domain.ValidationError{Msg: "nothing to update"}
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return models.Booking{}, domain.ValidationError{Field: "status", Msg: "must be pending, confirmed or cancelled"}
		}
		if !rc.IsAdmin() && *upd.Status != models.BookingCancelled {
			return models.Booking{}, domain.ErrForbidden
		}
	}

	current, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := authorizeBooking(rc, current); err != nil {
		return models.Booking{}, err
	}
	conn := s.db()
	if conn == nil {
		return models.Booking{}, domain.InternalError{Msg: "database not connected"}
	}

	var out models.Booking
	err = intdb.WithinTx(ctx, conn, func(tx *sqlx.Tx) error {
		// trip before booking, same order as Create
		trip, err := s.trips().LockForBooking(ctx, tx, current.TripID)
		if err != nil {
			return err
		}
		b, err := s.bookings().GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		wasActive := b.Status != models.BookingCancelled
		prevSeats := b.Seats
		if upd.Seats != nil {
			b.Seats = *upd.Seats
		}
		if upd.Status != nil {
			b.Status = *upd.Status
		}

		if upd.Seats != nil {
			price, err := repriceBooking(trip.Trip, b)
			if err != nil {
				return err
			}
			b.TotalPrice = decimal.NewNullDecimal(price)
		}

		seatsGrow := b.Seats > prevSeats
		reactivated := !wasActive && b.Status != models.BookingCancelled
		if b.Status != models.BookingCancelled && (seatsGrow || reactivated) {
			claims, err := s.bookings().SeatClaims(ctx, tx, trip.ID)
			if err != nil {
				return err
			}
			if _, err := domain.Reserve(trip.TotalSeats, claims, b.Seats, b.ID); err != nil {
				return err
			}
		}

		if err := s.bookings().UpdateSeatsStatus(ctx, tx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		s.reject(err)
		return models.Booking{}, wrapBookingErr(err)
	}

	out.UpdatedAt = utils.NowUTC()
	evt := events.BookingUpdated
	if out.Status == models.BookingCancelled && current.Status != models.BookingCancelled {
		evt = events.BookingCancelled
	}
	utils.LogEvent(s.RequestID, "booking", "update",
		fmt.Sprintf("booking_id=%d seats=%d status=%s", out.ID, out.Seats, out.Status))
	s.afterWrite(ctx, evt, out)
	return out, nil
}

// Cancel frees the booking's seats. The row stays for history.
func (s BookingService) Cancel(ctx context.Context, rc domain.RequestContext, id int64) (models.Booking, error) {
	st := models.BookingCancelled
	return s.Update(ctx, rc, id, models.BookingUpdate{Status: &st})
}

func (s BookingService) Delete(ctx context.Context, rc domain.RequestContext, id int64) error {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeBooking(rc, b); err != nil {
		return err
	}
	if err := s.bookings().Delete(ctx, id); err != nil {
		return wrapBookingErr(err)
	}
	utils.LogEvent(s.RequestID, "booking", "delete", fmt.Sprintf("booking_id=%d", id))
	s.afterWrite(ctx, events.BookingDeleted, b)
	return nil
}

func (s BookingService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.BookingDetail, error) {
	d, err := s.bookings().GetDetail(ctx, id)
	if err != nil {
		return d, err
	}
	if err := authorizeBooking(rc, d.Booking); err != nil {
		return models.BookingDetail{}, err
	}
	return d, nil
}

// List returns the caller's bookings, or everyone's for admins.
func (s BookingService) List(ctx context.Context, rc domain.RequestContext, page domain.Pagination) ([]models.BookingDetail, error) {
	userID := int64(rc.UserID)
	if rc.IsAdmin() {
		userID = 0
	} else if userID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	return s.bookings().List(ctx, userID, page)
}

// repriceBooking computes the total for b's current seat count on its
// stored section, or the flat fare for full-route bookings.
func repriceBooking(t models.Trip, b models.Booking) (decimal.Decimal, error) {
	boarding, alighting := "", ""
	if b.BoardingStop != nil {
		boarding = *b.BoardingStop
	}
	if b.AlightingStop != nil {
		alighting = *b.AlightingStop
	}
	p, err := PriceTrip(t, b.Seats, boarding, alighting)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Total, nil
}

func authorizeBooking(rc domain.RequestContext, b models.Booking) error {
	if rc.IsAdmin() {
		return nil
	}
	if rc.UserID <= 0 {
		return domain.ErrUnauthorized
	}
	if b.UserID == nil || *b.UserID != int64(rc.UserID) {
		return domain.ErrForbidden
	}
	return nil
}

func (s BookingService) afterWrite(ctx context.Context, t events.Type, b models.Booking) {
	if intconfig.StatsCache != nil {
		intconfig.StatsCache.Flush()
	}
	pub := s.Publisher
	if pub == nil {
		pub = events.LogPublisher{}
	}
	if err := pub.Publish(ctx, events.NewBookingEvent(t, b, s.RequestID)); err != nil {
		metrics.EventPublishErrors.Inc()
		utils.LogEvent(s.RequestID, "booking", "publish_failed", err.Error())
	}
}

func (s BookingService) reject(err error) {
	reason := ""
	switch {
	case errors.Is(err, domain.ErrInvalidSection):
		reason = metrics.ReasonInvalidSection
	case errors.Is(err, domain.ErrInvalidSeatCount):
		reason = metrics.ReasonSeatCount
	case errors.Is(err, domain.ErrCapacityExceeded):
		reason = metrics.ReasonCapacity
	default:
		return
	}
	metrics.BookingRejections.WithLabelValues(reason).Inc()
	utils.LogEvent(s.RequestID, "booking", "rejected", fmt.Sprintf("reason=%s err=%v", reason, err))
}

// wrapBookingErr passes domain errors through and hides storage errors.
func wrapBookingErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsCapacity(err); ok {
		return err
	}
	if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) ||
		errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthorized) {
		return err
	}
	if repositories.IsMissingParent(err) {
		return domain.ValidationError{Field: "tripId", Msg: "trip does not exist", Err: err}
	}
	return domain.InternalError{Msg: "booking storage failed", Err: err}
}
