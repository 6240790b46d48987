package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

type DepartureRepository struct {
	*base.Repository
}

func NewDepartureRepository(pool *pgxpool.Pool) *DepartureRepository {
	return &DepartureRepository{Repository: base.NewRepository(pool)}
}

const departureColumns = `id, tour_id, departure_date, end_date, max_guests, booked_guests,
		special_price, status, default_guide_id, notes, created_at, updated_at`

func scanDeparture(row pgx.Row) (*model.Departure, error) {
	var d model.Departure
	err := row.Scan(
		&d.ID,
		&d.TourID,
		&d.DepartureDate,
		&d.EndDate,
		&d.MaxGuests,
		&d.BookedGuests,
		&d.SpecialPrice,
		&d.Status,
		&d.DefaultGuideID,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// GetByID получает выезд по ID
func (r *DepartureRepository) GetByID(ctx context.Context, id int64) (*model.Departure, error) {
	query := `SELECT ` + departureColumns + ` FROM departures WHERE id = $1`

	dep, err := scanDeparture(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get departure by id: %w", err)
	}
	return dep, nil
}

// GetByTourAndDate находит выезд тура на конкретную дату
func (r *DepartureRepository) GetByTourAndDate(ctx context.Context, tourID int64, date time.Time) (*model.Departure, error) {
	query := `
		SELECT ` + departureColumns + `
		FROM departures
		WHERE tour_id = $1 AND departure_date::date = $2::date
		LIMIT 1
	`

	dep, err := scanDeparture(r.Pool().QueryRow(ctx, query, tourID, date))
	if err != nil {
		return nil, fmt.Errorf("get departure by tour and date: %w", err)
	}
	return dep, nil
}

// ListAvailableFrom возвращает доступные выезды тура начиная с даты
func (r *DepartureRepository) ListAvailableFrom(ctx context.Context, tourID int64, from time.Time) ([]*model.Departure, error) {
	query := `
		SELECT ` + departureColumns + `
		FROM departures
		WHERE tour_id = $1
		  AND departure_date >= $2
		  AND status NOT IN ('cancelled', 'completed', 'full')
		ORDER BY departure_date ASC
	`

	rows, err := r.Pool().Query(ctx, query, tourID, from)
	if err != nil {
		return nil, fmt.Errorf("list available departures: %w", err)
	}
	defer rows.Close()

	var departures []*model.Departure
	for rows.Next() {
		dep, err := scanDeparture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan departure: %w", err)
		}
		departures = append(departures, dep)
	}

	return departures, nil
}

// Recompute пересчитывает booked_guests как свёртку по активным
// бронированиям и выводит статус из занятости. Один UPDATE: строка выезда
// блокируется, конкурентные пересчёты сериализуются, повторный вызов
// даёт тот же результат.
func (r *DepartureRepository) Recompute(ctx context.Context, q base.Queryer, departureID int64) (*model.Departure, error) {
	query := `
		UPDATE departures d
		SET booked_guests = agg.total,
		    status = CASE
		        WHEN d.status IN ('cancelled', 'completed') THEN d.status
		        WHEN agg.total >= d.max_guests THEN 'full'
		        WHEN agg.total::numeric >= d.max_guests * 0.8 THEN 'almost_full'
		        ELSE 'available'
		    END,
		    updated_at = now()
		FROM (
		    SELECT COALESCE(SUM(b.number_of_guests), 0) AS total
		    FROM bookings b
		    WHERE b.departure_id = $1
		      AND b.status <> 'cancelled'
		      AND b.deleted_at IS NULL
		) agg
		WHERE d.id = $1
		RETURNING ` + departureColumnsPrefixed + `
	`

	dep, err := scanDeparture(r.Q(q).QueryRow(ctx, query, departureID))
	if err != nil {
		return nil, fmt.Errorf("recompute departure: %w", err)
	}
	if dep == nil {
		return nil, fmt.Errorf("departure not found")
	}
	return dep, nil
}

const departureColumnsPrefixed = `d.id, d.tour_id, d.departure_date, d.end_date, d.max_guests, d.booked_guests,
		d.special_price, d.status, d.default_guide_id, d.notes, d.created_at, d.updated_at`

// ListUpcomingIDs возвращает идентификаторы выездов начиная с даты
func (r *DepartureRepository) ListUpcomingIDs(ctx context.Context, from time.Time) ([]int64, error) {
	query := `
		SELECT id FROM departures
		WHERE departure_date >= $1 AND status NOT IN ('cancelled', 'completed')
		ORDER BY departure_date ASC
	`

	rows, err := r.Pool().Query(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("list upcoming departures: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan departure id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
