package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type PointsRepository struct {
	*base.Repository
}

func NewPointsRepository(pool *pgxpool.Pool) *PointsRepository {
	return &PointsRepository{Repository: base.NewRepository(pool)}
}

// Append дописывает запись в журнал баллов. Журнал никогда не
// изменяется и не удаляется.
func (r *PointsRepository) Append(ctx context.Context, q base.Queryer, entry *model.PointsHistory) error {
	query := `
		INSERT INTO points_history (user_id, transaction_type, points, description, booking_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.Q(q).QueryRow(
		ctx, query,
		entry.UserID,
		entry.TransactionType,
		entry.Points,
		entry.Description,
		entry.BookingCode,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("append points history: %w", err)
	}

	return nil
}

// HasEarnedForBooking было ли уже начисление по коду бронирования.
// Журнал авторитетен: именно он защищает от повторного начисления.
func (r *PointsRepository) HasEarnedForBooking(ctx context.Context, q base.Queryer, bookingCode string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM points_history
			WHERE booking_code = $1 AND transaction_type = 'earned'
		)
	`

	var exists bool
	err := r.Q(q).QueryRow(ctx, query, bookingCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check earned entry: %w", err)
	}
	return exists, nil
}

// ListByUser возвращает журнал баллов пользователя
func (r *PointsRepository) ListByUser(ctx context.Context, userID int64) ([]*model.PointsHistory, error) {
	query := `
		SELECT id, user_id, transaction_type, points, description, booking_code, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list points history: %w", err)
	}
	defer rows.Close()

	var entries []*model.PointsHistory
	for rows.Next() {
		var e model.PointsHistory
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.TransactionType,
			&e.Points,
			&e.Description,
			&e.BookingCode,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan points history: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, nil
}

// SumByUser свёртка журнала: должна совпадать с балансом пользователя
func (r *PointsRepository) SumByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM points_history WHERE user_id = $1`

	var total int
	err := r.Pool().QueryRow(ctx, query, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points history: %w", err)
	}
	return total, nil
}
