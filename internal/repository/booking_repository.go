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

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

const bookingColumns = `id, code, user_id, tour_id, departure_id, guide_id, tour_date,
		number_of_guests, original_amount, member_discount, points_redeemed, points_discount,
		total_amount, status, payment_status, payment_method, payment_transaction_id,
		payment_date, refund_amount, cancelled_at, cancellation_reason, notes,
		deleted_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.Code,
		&b.UserID,
		&b.TourID,
		&b.DepartureID,
		&b.GuideID,
		&b.TourDate,
		&b.NumberOfGuests,
		&b.OriginalAmount,
		&b.MemberDiscount,
		&b.PointsRedeemed,
		&b.PointsDiscount,
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.PaymentTransactionID,
		&b.PaymentDate,
		&b.RefundAmount,
		&b.CancelledAt,
		&b.CancellationReason,
		&b.Notes,
		&b.DeletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, q base.Queryer, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (code, user_id, tour_id, departure_id, guide_id, tour_date,
			number_of_guests, original_amount, member_discount, points_redeemed,
			points_discount, total_amount, status, payment_status, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	err := r.Q(q).QueryRow(
		ctx, query,
		booking.Code,
		booking.UserID,
		booking.TourID,
		booking.DepartureID,
		booking.GuideID,
		booking.TourDate,
		booking.NumberOfGuests,
		booking.OriginalAmount,
		booking.MemberDiscount,
		booking.PointsRedeemed,
		booking.PointsDiscount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.Notes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// Update обновляет изменяемые поля бронирования
func (r *BookingRepository) Update(ctx context.Context, q base.Queryer, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET guide_id = $2, tour_date = $3, number_of_guests = $4,
		    original_amount = $5, member_discount = $6, points_redeemed = $7,
		    points_discount = $8, total_amount = $9, status = $10,
		    payment_status = $11, payment_method = $12, payment_transaction_id = $13,
		    payment_date = $14, refund_amount = $15, cancelled_at = $16,
		    cancellation_reason = $17, notes = $18, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := r.Q(q).Exec(
		ctx, query,
		booking.ID,
		booking.GuideID,
		booking.TourDate,
		booking.NumberOfGuests,
		booking.OriginalAmount,
		booking.MemberDiscount,
		booking.PointsRedeemed,
		booking.PointsDiscount,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.PaymentTransactionID,
		booking.PaymentDate,
		booking.RefundAmount,
		booking.CancelledAt,
		booking.CancellationReason,
		booking.Notes,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// GetByCode получает бронирование по уникальному коду
func (r *BookingRepository) GetByCode(ctx context.Context, code string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.Pool().QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("get booking by code: %w", err)
	}
	return booking, nil
}

// ListByUser возвращает все бронирования пользователя
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// CodeExists проверяет занят ли код бронирования
func (r *BookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE code = $1)`

	var exists bool
	err := r.Pool().QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking code: %w", err)
	}
	return exists, nil
}

// SumGuestsForTourDate суммарное число гостей в активных бронированиях
// тура на дату. Используется legacy-проверкой вместимости без выезда.
func (r *BookingRepository) SumGuestsForTourDate(ctx context.Context, tourID int64, date time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(number_of_guests), 0)
		FROM bookings
		WHERE tour_id = $1
		  AND tour_date::date = $2::date
		  AND status <> 'cancelled'
		  AND deleted_at IS NULL
	`

	var total int
	err := r.Pool().QueryRow(ctx, query, tourID, date).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum guests for tour date: %w", err)
	}
	return total, nil
}

// SoftDelete помечает бронирование удалённым, строка остаётся в БД
func (r *BookingRepository) SoftDelete(ctx context.Context, q base.Queryer, id int64) error {
	query := `UPDATE bookings SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.Q(q).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// CreateGuests создаёт записи участников бронирования
func (r *BookingRepository) CreateGuests(ctx context.Context, q base.Queryer, bookingID int64, guests []*model.BookingGuest) error {
	query := `
		INSERT INTO booking_guests (booking_id, full_name, age, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for _, g := range guests {
		g.BookingID = bookingID
		err := r.Q(q).QueryRow(ctx, query, bookingID, g.FullName, g.Age, g.Phone).Scan(&g.ID)
		if err != nil {
			return fmt.Errorf("create booking guest: %w", err)
		}
	}

	return nil
}

// DeleteGuests удаляет всех участников бронирования (полная замена списка)
func (r *BookingRepository) DeleteGuests(ctx context.Context, q base.Queryer, bookingID int64) error {
	_, err := r.Q(q).Exec(ctx, `DELETE FROM booking_guests WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("delete booking guests: %w", err)
	}
	return nil
}

// GetGuests возвращает участников бронирования
func (r *BookingRepository) GetGuests(ctx context.Context, bookingID int64) ([]*model.BookingGuest, error) {
	query := `
		SELECT id, booking_id, full_name, age, phone
		FROM booking_guests
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.Pool().Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking guests: %w", err)
	}
	defer rows.Close()

	var guests []*model.BookingGuest
	for rows.Next() {
		var g model.BookingGuest
		if err := rows.Scan(&g.ID, &g.BookingID, &g.FullName, &g.Age, &g.Phone); err != nil {
			return nil, fmt.Errorf("scan booking guest: %w", err)
		}
		guests = append(guests, &g)
	}

	return guests, nil
}
