package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/cache"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
	"go.uber.org/zap"
)

// CapacityService ведёт учёт занятости выездов. booked_guests всегда
// пересчитывается свёрткой по активным бронированиям — счётчик не
// инкрементируется по месту и потому не дрейфует.
type CapacityService struct {
	departures DepartureStore
	cache      *cache.DepartureCache
	logger     *zap.Logger
}

func NewCapacityService(departures DepartureStore, depCache *cache.DepartureCache, logger *zap.Logger) *CapacityService {
	return &CapacityService{
		departures: departures,
		cache:      depCache,
		logger:     logger,
	}
}

// Recompute пересчитывает занятость выезда и сбрасывает его кэш.
// Результат зависит только от текущего состава бронирований, поэтому
// повторный вызов без изменений даёт тот же результат.
func (s *CapacityService) Recompute(ctx context.Context, q base.Queryer, departureID int64) (*model.Departure, error) {
	dep, err := s.departures.Recompute(ctx, q, departureID)
	if err != nil {
		return nil, fmt.Errorf("recompute capacity: %w", err)
	}

	s.cache.Invalidate(ctx, departureID)

	s.logger.Info("Departure capacity recomputed",
		zap.Int64("departure_id", departureID),
		zap.Int("booked_guests", dep.BookedGuests),
		zap.String("status", string(dep.Status)),
	)

	return dep, nil
}

// CheckAvailability хватает ли на выезде мест под guests человек
func (s *CapacityService) CheckAvailability(ctx context.Context, departureID int64, guests int) (bool, error) {
	if av, ok := s.cache.Get(ctx, departureID); ok {
		return av.MaxGuests-av.BookedGuests >= guests, nil
	}

	dep, err := s.departures.GetByID(ctx, departureID)
	if err != nil {
		return false, fmt.Errorf("get departure: %w", err)
	}
	if dep == nil {
		return false, apperr.NotFoundf("departure not found")
	}

	s.cache.Set(ctx, departureID, cache.Availability{
		BookedGuests: dep.BookedGuests,
		MaxGuests:    dep.MaxGuests,
		Status:       dep.Status,
	})

	return dep.AvailableSlots() >= guests, nil
}

// ListAvailableDepartures доступные выезды тура начиная с даты
func (s *CapacityService) ListAvailableDepartures(ctx context.Context, tourID int64, from time.Time) ([]*model.Departure, error) {
	return s.departures.ListAvailableFrom(ctx, tourID, from)
}

// ReconcileUpcoming пересчитывает все предстоящие выезды, возвращает
// число успешно сверенных
func (s *CapacityService) ReconcileUpcoming(ctx context.Context, from time.Time) (int, error) {
	ids, err := s.departures.ListUpcomingIDs(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("list upcoming departures: %w", err)
	}

	count := 0
	for _, id := range ids {
		if _, err := s.Recompute(ctx, nil, id); err != nil {
			s.logger.Warn("Failed to reconcile departure",
				zap.Int64("departure_id", id),
				zap.Error(err))
			continue
		}
		count++
	}

	return count, nil
}
