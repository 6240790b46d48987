package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

const userColumns = `id, email, first_name, last_name, phone, loyalty_points, member_tier,
		member_since, last_tier_update_at, last_login_at, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.LoyaltyPoints,
		&u.MemberTier,
		&u.MemberSince,
		&u.LastTierUpdateAt,
		&u.LastLoginAt,
		&u.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// AddPoints атомарно изменяет баланс баллов и возвращает новый итог.
// Одним UPDATE, чтобы конкурентные начисления не теряли обновления.
func (r *UserRepository) AddPoints(ctx context.Context, q base.Queryer, userID int64, delta int) (int, error) {
	query := `
		UPDATE users
		SET loyalty_points = loyalty_points + $2
		WHERE id = $1
		RETURNING loyalty_points
	`

	var total int
	err := r.Q(q).QueryRow(ctx, query, userID, delta).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}
	return total, nil
}

// DeductPoints атомарно списывает баллы, если баланса хватает.
// Возвращает false при недостатке баллов.
func (r *UserRepository) DeductPoints(ctx context.Context, q base.Queryer, userID int64, points int) (bool, error) {
	query := `
		UPDATE users
		SET loyalty_points = loyalty_points - $2
		WHERE id = $1 AND loyalty_points >= $2
	`

	tag, err := r.Q(q).Exec(ctx, query, userID, points)
	if err != nil {
		return false, fmt.Errorf("deduct points: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeductPointsClamped списывает не больше текущего баланса и возвращает
// фактически списанное количество. Строка блокируется внутри транзакции.
func (r *UserRepository) DeductPointsClamped(ctx context.Context, q base.Queryer, userID int64, points int) (int, error) {
	var balance int
	err := r.Q(q).QueryRow(ctx, `SELECT loyalty_points FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("lock user balance: %w", err)
	}

	deduct := points
	if deduct > balance {
		deduct = balance
	}
	if deduct <= 0 {
		return 0, nil
	}

	_, err = r.Q(q).Exec(ctx, `UPDATE users SET loyalty_points = loyalty_points - $2 WHERE id = $1`, userID, deduct)
	if err != nil {
		return 0, fmt.Errorf("deduct points clamped: %w", err)
	}
	return deduct, nil
}

// UpdateTier обновляет уровень участника, фиксируя момент смены
func (r *UserRepository) UpdateTier(ctx context.Context, q base.Queryer, userID int64, tier model.MemberTier) error {
	query := `
		UPDATE users
		SET member_tier = $2, last_tier_update_at = now()
		WHERE id = $1 AND member_tier <> $2
	`

	_, err := r.Q(q).Exec(ctx, query, userID, tier)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	return nil
}
