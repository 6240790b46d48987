package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type TourRepository struct {
	*base.Repository
}

func NewTourRepository(pool *pgxpool.Pool) *TourRepository {
	return &TourRepository{Repository: base.NewRepository(pool)}
}

// GetByID получает тур по ID
func (r *TourRepository) GetByID(ctx context.Context, id int64) (*model.Tour, error) {
	query := `
		SELECT id, title, description, price, max_guests, status, created_at, updated_at
		FROM tours
		WHERE id = $1
	`

	var t model.Tour
	err := r.Pool().QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Price,
		&t.MaxGuests,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tour by id: %w", err)
	}

	return &t, nil
}
