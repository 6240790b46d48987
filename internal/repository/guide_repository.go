package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type GuideRepository struct {
	*base.Repository
}

func NewGuideRepository(pool *pgxpool.Pool) *GuideRepository {
	return &GuideRepository{Repository: base.NewRepository(pool)}
}

// ListByTour возвращает гидов, назначенных на тур, вместе с признаком дефолтного
func (r *GuideRepository) ListByTour(ctx context.Context, tourID int64) ([]*model.TourGuide, error) {
	query := `
		SELECT tg.tour_id, tg.guide_id, tg.is_default,
		       g.id, g.first_name, g.last_name, g.phone, g.rating, g.is_active
		FROM tour_guides tg
		JOIN guides g ON g.id = tg.guide_id
		WHERE tg.tour_id = $1 AND g.is_active
		ORDER BY tg.is_default DESC, g.rating DESC, g.last_name ASC
	`

	rows, err := r.Pool().Query(ctx, query, tourID)
	if err != nil {
		return nil, fmt.Errorf("list guides by tour: %w", err)
	}
	defer rows.Close()

	var guides []*model.TourGuide
	for rows.Next() {
		var tg model.TourGuide
		var g model.Guide
		err := rows.Scan(
			&tg.TourID,
			&tg.GuideID,
			&tg.IsDefault,
			&g.ID,
			&g.FirstName,
			&g.LastName,
			&g.Phone,
			&g.Rating,
			&g.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tour guide: %w", err)
		}
		tg.Guide = &g
		guides = append(guides, &tg)
	}

	return guides, nil
}

// IsAssignedToTour проверяет что гид назначен на тур
func (r *GuideRepository) IsAssignedToTour(ctx context.Context, guideID, tourID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tour_guides WHERE guide_id = $1 AND tour_id = $2)`

	var assigned bool
	err := r.Pool().QueryRow(ctx, query, guideID, tourID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("check guide assignment: %w", err)
	}
	return assigned, nil
}

// IsAvailableOn свободен ли гид в календарную дату. Календарь у гида
// один на все туры: любое активное бронирование в этот день занимает его.
func (r *GuideRepository) IsAvailableOn(ctx context.Context, guideID int64, date time.Time) (bool, error) {
	query := `
		SELECT NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE guide_id = $1
			  AND tour_date::date = $2::date
			  AND status <> 'cancelled'
			  AND deleted_at IS NULL
		)
	`

	var available bool
	err := r.Pool().QueryRow(ctx, query, guideID, date).Scan(&available)
	if err != nil {
		return false, fmt.Errorf("check guide availability: %w", err)
	}
	return available, nil
}

// DefaultForTour первый дефолтный гид тура, иначе первый назначенный
func (r *GuideRepository) DefaultForTour(ctx context.Context, tourID int64) (*model.TourGuide, error) {
	query := `
		SELECT tg.tour_id, tg.guide_id, tg.is_default
		FROM tour_guides tg
		JOIN guides g ON g.id = tg.guide_id
		WHERE tg.tour_id = $1 AND g.is_active
		ORDER BY tg.is_default DESC, tg.guide_id ASC
		LIMIT 1
	`

	var tg model.TourGuide
	err := r.Pool().QueryRow(ctx, query, tourID).Scan(&tg.TourID, &tg.GuideID, &tg.IsDefault)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default guide for tour: %w", err)
	}

	return &tg, nil
}
