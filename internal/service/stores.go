package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
)

// Контракты внешних хранилищ, которыми пользуется ядро. Реализуются
// pgx-репозиториями; в тестах подменяются in-memory фейками.
// Методы с base.Queryer участвуют в транзакции вызывающего (nil — без неё).

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	AddPoints(ctx context.Context, q base.Queryer, userID int64, delta int) (int, error)
	DeductPoints(ctx context.Context, q base.Queryer, userID int64, points int) (bool, error)
	DeductPointsClamped(ctx context.Context, q base.Queryer, userID int64, points int) (int, error)
	UpdateTier(ctx context.Context, q base.Queryer, userID int64, tier model.MemberTier) error
}

type TourStore interface {
	GetByID(ctx context.Context, id int64) (*model.Tour, error)
}

type DepartureStore interface {
	GetByID(ctx context.Context, id int64) (*model.Departure, error)
	GetByTourAndDate(ctx context.Context, tourID int64, date time.Time) (*model.Departure, error)
	ListAvailableFrom(ctx context.Context, tourID int64, from time.Time) ([]*model.Departure, error)
	Recompute(ctx context.Context, q base.Queryer, departureID int64) (*model.Departure, error)
	ListUpcomingIDs(ctx context.Context, from time.Time) ([]int64, error)
}

type GuideStore interface {
	ListByTour(ctx context.Context, tourID int64) ([]*model.TourGuide, error)
	IsAssignedToTour(ctx context.Context, guideID, tourID int64) (bool, error)
	IsAvailableOn(ctx context.Context, guideID int64, date time.Time) (bool, error)
	DefaultForTour(ctx context.Context, tourID int64) (*model.TourGuide, error)
}

type BookingStore interface {
	Create(ctx context.Context, q base.Queryer, booking *model.Booking) error
	Update(ctx context.Context, q base.Queryer, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetByCode(ctx context.Context, code string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	SumGuestsForTourDate(ctx context.Context, tourID int64, date time.Time) (int, error)
	SoftDelete(ctx context.Context, q base.Queryer, id int64) error
	CreateGuests(ctx context.Context, q base.Queryer, bookingID int64, guests []*model.BookingGuest) error
	DeleteGuests(ctx context.Context, q base.Queryer, bookingID int64) error
	GetGuests(ctx context.Context, bookingID int64) ([]*model.BookingGuest, error)
}

type PointsStore interface {
	Append(ctx context.Context, q base.Queryer, entry *model.PointsHistory) error
	HasEarnedForBooking(ctx context.Context, q base.Queryer, bookingCode string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.PointsHistory, error)
	SumByUser(ctx context.Context, userID int64) (int, error)
}

// AuditSink принимает записи аудита; отказ записи глотается на месте
type AuditSink interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

// Tx транзакция хранилища в объёме, нужном сервисам
type Tx interface {
	base.Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB открывает транзакции; боевая реализация поверх pgxpool
type DB interface {
	Begin(ctx context.Context) (Tx, error)
}

type pgxDB struct {
	pool *pgxpool.Pool
}

// NewDB оборачивает пул соединений в DB
func NewDB(pool *pgxpool.Pool) DB {
	return pgxDB{pool: pool}
}

func (d pgxDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
