package app

import (
	"context"
	"time"

	"github.com/wandertrip/tour_booking/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	capacity *service.CapacityService
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(capacity *service.CapacityService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		capacity: capacity,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runCapacityReconcileTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runCapacityReconcileTask периодически сверяет занятость предстоящих выездов
func (s *Scheduler) runCapacityReconcileTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.reconcileCapacity(ctx)

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcileCapacity(ctx)
		case <-s.stopChan:
			s.logger.Info("Capacity reconcile task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Capacity reconcile task cancelled")
			return
		}
	}
}

// reconcileCapacity пересчитывает booked_guests у всех предстоящих выездов.
// Пересчёт идемпотентен, лишний прогон безвреден и лечит дрейф счётчика.
func (s *Scheduler) reconcileCapacity(ctx context.Context) {
	s.logger.Info("Starting capacity reconciliation")

	count, err := s.capacity.ReconcileUpcoming(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to reconcile capacity", zap.Error(err))
		return
	}

	s.logger.Info("Capacity reconciliation completed", zap.Int("departures", count))
}
