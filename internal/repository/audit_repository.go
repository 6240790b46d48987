package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type AuditRepository struct {
	*base.Repository
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{Repository: base.NewRepository(pool)}
}

// Insert добавляет запись аудита
func (r *AuditRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_name, entity_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.Pool().Exec(
		ctx, query,
		entry.UserID,
		entry.Action,
		entry.EntityName,
		entry.EntityID,
		entry.Description,
		entry.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}
