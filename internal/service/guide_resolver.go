package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/model"
	"go.uber.org/zap"
)

// GuideResolver подбирает гида для бронирования по приоритету:
// дефолтный гид выезда (если свободен), затем гид, которого попросил
// клиент (должен быть назначен на тур; занятость не блокирует, только
// предупреждение), затем дефолтный гид тура (если свободен).
type GuideResolver struct {
	guides GuideStore
	logger *zap.Logger
}

func NewGuideResolver(guides GuideStore, logger *zap.Logger) *GuideResolver {
	return &GuideResolver{guides: guides, logger: logger}
}

// Resolve возвращает id выбранного гида (nil — никто не подошёл) и
// нефатальное предупреждение для клиента.
func (r *GuideResolver) Resolve(ctx context.Context, tourID int64, dep *model.Departure, requestedGuideID *int64, date time.Time) (*int64, string, error) {
	// 1. Дефолтный гид выезда
	if dep != nil && dep.DefaultGuideID != nil {
		available, err := r.guides.IsAvailableOn(ctx, *dep.DefaultGuideID, date)
		if err != nil {
			return nil, "", fmt.Errorf("check departure guide availability: %w", err)
		}
		if available {
			return dep.DefaultGuideID, "", nil
		}
	}

	// 2. Гид, запрошенный клиентом
	if requestedGuideID != nil {
		assigned, err := r.guides.IsAssignedToTour(ctx, *requestedGuideID, tourID)
		if err != nil {
			return nil, "", fmt.Errorf("check guide assignment: %w", err)
		}
		if !assigned {
			return nil, "", apperr.Validationf("requested guide is not assigned to this tour")
		}

		available, err := r.guides.IsAvailableOn(ctx, *requestedGuideID, date)
		if err != nil {
			return nil, "", fmt.Errorf("check requested guide availability: %w", err)
		}

		warning := ""
		if !available {
			warning = "requested guide is not available on the selected date"
			r.logger.Warn("Requested guide is busy, assigning anyway",
				zap.Int64("guide_id", *requestedGuideID),
				zap.Time("date", date))
		}
		return requestedGuideID, warning, nil
	}

	// 3. Дефолтный гид тура
	tg, err := r.guides.DefaultForTour(ctx, tourID)
	if err != nil {
		return nil, "", fmt.Errorf("get default tour guide: %w", err)
	}
	if tg != nil {
		available, err := r.guides.IsAvailableOn(ctx, tg.GuideID, date)
		if err != nil {
			return nil, "", fmt.Errorf("check default guide availability: %w", err)
		}
		if available {
			id := tg.GuideID
			return &id, "", nil
		}
	}

	return nil, "", nil
}

// Candidate гид тура с признаком занятости на дату
type Candidate struct {
	*model.TourGuide
	Available bool `json:"available"`
}

// ListCandidates возвращает гидов тура: сначала свободные, среди них
// сначала дефолтные, дальше по рейтингу
func (r *GuideResolver) ListCandidates(ctx context.Context, tourID int64, date time.Time) ([]*Candidate, error) {
	guides, err := r.guides.ListByTour(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("list tour guides: %w", err)
	}

	candidates := make([]*Candidate, 0, len(guides))
	for _, tg := range guides {
		available, err := r.guides.IsAvailableOn(ctx, tg.GuideID, date)
		if err != nil {
			return nil, fmt.Errorf("check guide availability: %w", err)
		}
		candidates = append(candidates, &Candidate{TourGuide: tg, Available: available})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Available != candidates[j].Available {
			return candidates[i].Available
		}
		if candidates[i].IsDefault != candidates[j].IsDefault {
			return candidates[i].IsDefault
		}
		return candidates[i].Guide.Rating > candidates[j].Guide.Rating
	})

	return candidates, nil
}
