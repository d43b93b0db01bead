package services

import (
	"context"

	intconfig "busgo/internal/config"
	"busgo/internal/domain/models"
	"busgo/internal/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const recentBookingsLimit = 10

type Stats struct {
	repositories.Totals
	Revenue          decimal.Decimal            `json:"revenue"`
	BookingsByStatus []repositories.StatusCount `json:"bookingsByStatus"`
	RecentBookings   []models.BookingDetail     `json:"recentBookings"`
}

type StatsService struct {
	DB    *sqlx.DB
	Stats repositories.StatsRepo
}

func (s StatsService) repo() repositories.StatsRepo {
	if s.Stats.DB != nil {
		return s.Stats
	}
	if s.DB != nil {
		return repositories.StatsRepo{DB: s.DB}
	}
	return repositories.StatsRepo{DB: intconfig.DB}
}

// Dashboard aggregates admin stats, served from StatsCache until a booking
// write flushes it or the TTL passes.
func (s StatsService) Dashboard(ctx context.Context) (Stats, error) {
	key := intconfig.GetCacheKey("stats", "dashboard")
	if intconfig.StatsCache != nil {
		if v, ok := intconfig.StatsCache.Get(key); ok {
			return v.(Stats), nil
		}
	}

	var out Stats
	var err error
	r := s.repo()
	if out.Totals, err = r.Totals(ctx); err != nil {
		return out, err
	}
	if out.Revenue, err = r.Revenue(ctx); err != nil {
		return out, err
	}
	if out.BookingsByStatus, err = r.BookingsByStatus(ctx); err != nil {
		return out, err
	}
	if out.RecentBookings, err = r.RecentBookings(ctx, recentBookingsLimit); err != nil {
		return out, err
	}

	if intconfig.StatsCache != nil {
		intconfig.StatsCache.SetDefault(key, out)
	}
	return out, nil
}
