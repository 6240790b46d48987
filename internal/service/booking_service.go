package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/notifier"
	"go.uber.org/zap"
)

// BookingService управляет жизненным циклом бронирования: создание,
// правки, переходы статусов, оплата, отмена и назначение гида.
// Единственная точка входа для внешнего мира; занятость выездов и
// баллы лояльности меняются только отсюда.
type BookingService struct {
	db         DB
	users      UserStore
	tours      TourStore
	departures DepartureStore
	guides     GuideStore
	bookings   BookingStore
	capacity   *CapacityService
	loyalty    *LoyaltyService
	resolver   *GuideResolver
	codes      *CodeGenerator
	auditLog   AuditSink
	notify     *notifier.Telegram
	logger     *zap.Logger
}

func NewBookingService(
	db DB,
	users UserStore,
	tours TourStore,
	departures DepartureStore,
	guides GuideStore,
	bookings BookingStore,
	capacity *CapacityService,
	loyalty *LoyaltyService,
	resolver *GuideResolver,
	codes *CodeGenerator,
	auditLog AuditSink,
	notify *notifier.Telegram,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:         db,
		users:      users,
		tours:      tours,
		departures: departures,
		guides:     guides,
		bookings:   bookings,
		capacity:   capacity,
		loyalty:    loyalty,
		resolver:   resolver,
		codes:      codes,
		auditLog:   auditLog,
		notify:     notify,
		logger:     logger,
	}
}

type GuestRequest struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Phone    string `json:"phone"`
}

type CreateBookingRequest struct {
	TourID         int64          `json:"tour_id"`
	DepartureID    *int64         `json:"departure_id"`
	TourDate       string         `json:"tour_date"`
	NumberOfGuests int            `json:"number_of_guests"`
	PaymentMethod  string         `json:"payment_method"`
	GuideID        *int64         `json:"guide_id"`
	PointsToRedeem int            `json:"points_to_redeem"`
	Notes          string         `json:"notes"`
	Guests         []GuestRequest `json:"guests"`
}

type UpdateBookingRequest struct {
	TourDate       *string        `json:"tour_date"`
	NumberOfGuests *int           `json:"number_of_guests"`
	PaymentMethod  *string        `json:"payment_method"`
	Notes          *string        `json:"notes"`
	Guests         []GuestRequest `json:"guests"`
}

type PaymentUpdateRequest struct {
	PaymentStatus string   `json:"payment_status"`
	TransactionID string   `json:"transaction_id"`
	RefundAmount  *float64 `json:"refund_amount"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

func parseTourDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid tour date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

// CreateBooking создаёт бронирование: проверяет тур и вместимость,
// считает цену со скидкой участника и списанием баллов, подбирает гида
// и чеканит уникальный код. Возвращает бронирование и нефатальное
// предупреждение про гида.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, req *CreateBookingRequest) (*model.Booking, string, error) {
	if req.NumberOfGuests <= 0 {
		return nil, "", apperr.Validationf("number of guests must be positive")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, "", apperr.NotFoundf("user not found")
	}

	tour, err := s.tours.GetByID(ctx, req.TourID)
	if err != nil {
		return nil, "", fmt.Errorf("get tour: %w", err)
	}
	if tour == nil {
		return nil, "", apperr.NotFoundf("tour not found")
	}
	if tour.Status != model.TourStatusActive {
		return nil, "", apperr.Validationf("tour is not active")
	}

	tourDate, err := parseTourDate(req.TourDate)
	if err != nil {
		return nil, "", err
	}
	if tourDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, "", apperr.Validationf("tour date is in the past")
	}

	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, "", apperr.Validationf("unknown payment method %q", req.PaymentMethod)
	}

	// Определяем выезд: явный id, подбор по дате или legacy-проверка
	// вместимости целого тура, когда выездов на дату нет
	var dep *model.Departure
	if req.DepartureID != nil {
		dep, err = s.departures.GetByID(ctx, *req.DepartureID)
		if err != nil {
			return nil, "", fmt.Errorf("get departure: %w", err)
		}
		if dep == nil {
			return nil, "", apperr.NotFoundf("departure not found")
		}
	} else {
		dep, err = s.departures.GetByTourAndDate(ctx, tour.ID, tourDate)
		if err != nil {
			return nil, "", fmt.Errorf("find departure: %w", err)
		}
	}

	if dep != nil {
		if dep.TourID != tour.ID {
			return nil, "", apperr.Validationf("departure does not belong to this tour")
		}
		if dep.Status == model.DepartureStatusFull || dep.Status == model.DepartureStatusCancelled {
			return nil, "", apperr.Validationf("departure is %s", dep.Status)
		}
		if dep.AvailableSlots() < req.NumberOfGuests {
			return nil, "", apperr.Validationf("only %d slots available on this departure", dep.AvailableSlots())
		}
	} else {
		booked, err := s.bookings.SumGuestsForTourDate(ctx, tour.ID, tourDate)
		if err != nil {
			return nil, "", fmt.Errorf("sum tour date guests: %w", err)
		}
		if booked+req.NumberOfGuests > tour.MaxGuests {
			return nil, "", apperr.Validationf("not enough capacity for this date, %d slots left", tour.MaxGuests-booked)
		}
	}

	price := tour.Price
	if dep != nil {
		price = dep.EffectivePrice(tour.Price)
	}
	originalAmount := model.RoundMoney(price * float64(req.NumberOfGuests))
	memberDiscount := s.loyalty.Discount(originalAmount, user.MemberTier)

	guideID, warning, err := s.resolver.Resolve(ctx, tour.ID, dep, req.GuideID, tourDate)
	if err != nil {
		return nil, "", err
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("mint booking code: %w", err)
	}

	if req.PointsToRedeem > 0 {
		if req.PointsToRedeem > user.LoyaltyPoints {
			return nil, "", apperr.Validationf("insufficient points balance")
		}
		maxRedeem := s.loyalty.MaxRedeemable(originalAmount - memberDiscount)
		if req.PointsToRedeem > maxRedeem {
			return nil, "", apperr.Validationf("points to redeem exceed the cap of %d", maxRedeem)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pointsDiscount := 0.0
	if req.PointsToRedeem > 0 {
		pointsDiscount, err = s.loyalty.ConvertPointsToMoney(ctx, tx, userID, req.PointsToRedeem, &code)
		if err != nil {
			return nil, "", err
		}
	}

	booking := &model.Booking{
		Code:           code,
		UserID:         userID,
		TourID:         tour.ID,
		GuideID:        guideID,
		TourDate:       tourDate,
		NumberOfGuests: req.NumberOfGuests,
		OriginalAmount: originalAmount,
		MemberDiscount: memberDiscount,
		PointsRedeemed: req.PointsToRedeem,
		PointsDiscount: pointsDiscount,
		TotalAmount:    model.RoundMoney(originalAmount - memberDiscount - pointsDiscount),
		Status:         model.BookingStatusPending,
		PaymentStatus:  model.PaymentStatusPending,
		PaymentMethod:  method,
		Notes:          req.Notes,
	}
	if dep != nil {
		booking.DepartureID = &dep.ID
	}

	if err := s.bookings.Create(ctx, tx, booking); err != nil {
		return nil, "", err
	}

	if len(req.Guests) > 0 {
		guests := make([]*model.BookingGuest, 0, len(req.Guests))
		for _, g := range req.Guests {
			guests = append(guests, &model.BookingGuest{FullName: g.FullName, Age: g.Age, Phone: g.Phone})
		}
		if err := s.bookings.CreateGuests(ctx, tx, booking.ID, guests); err != nil {
			return nil, "", err
		}
		booking.Guests = guests
	}

	// Пересчёт внутри транзакции блокирует строку выезда: проигравший
	// конкурентную вставку откатывается здесь, овербукинг невозможен
	if booking.DepartureID != nil {
		recomputed, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID)
		if err != nil {
			return nil, "", err
		}
		if recomputed.BookedGuests > recomputed.MaxGuests {
			return nil, "", apperr.Validationf("not enough slots available on this departure")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("code", booking.Code),
		zap.Int64("user_id", userID),
		zap.Int64("tour_id", tour.ID),
		zap.Int("guests", booking.NumberOfGuests),
		zap.Float64("total_amount", booking.TotalAmount),
	)

	s.writeAudit(ctx, &userID, "booking.create", booking.ID,
		fmt.Sprintf("Booking %s created for tour %d", booking.Code, tour.ID))
	go s.notify.BookingCreated(context.Background(), booking)

	return booking, warning, nil
}

// UpdateBooking правит клиентские поля. Разрешено только пока
// бронирование в статусе pending; список гостей заменяется целиком.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req *UpdateBookingRequest) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}
	if booking.Status != model.BookingStatusPending {
		return nil, apperr.Validationf("only pending bookings can be edited")
	}

	if req.TourDate != nil {
		date, err := parseTourDate(*req.TourDate)
		if err != nil {
			return nil, err
		}
		if date.Before(time.Now().Truncate(24 * time.Hour)) {
			return nil, apperr.Validationf("tour date is in the past")
		}
		booking.TourDate = date
	}
	if req.NumberOfGuests != nil {
		if *req.NumberOfGuests <= 0 {
			return nil, apperr.Validationf("number of guests must be positive")
		}
		booking.NumberOfGuests = *req.NumberOfGuests
	}
	if req.PaymentMethod != nil {
		method, err := model.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return nil, apperr.Validationf("unknown payment method %q", *req.PaymentMethod)
		}
		booking.PaymentMethod = method
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	tour, err := s.tours.GetByID(ctx, booking.TourID)
	if err != nil {
		return nil, fmt.Errorf("get tour: %w", err)
	}
	if user == nil || tour == nil {
		return nil, apperr.NotFoundf("booking owner or tour not found")
	}

	price := tour.Price
	if booking.DepartureID != nil {
		dep, err := s.departures.GetByID(ctx, *booking.DepartureID)
		if err != nil {
			return nil, fmt.Errorf("get departure: %w", err)
		}
		if dep != nil {
			price = dep.EffectivePrice(tour.Price)
		}
	}

	// Суммы пересчитываются той же формулой; уже применённая скидка
	// за баллы сохраняется
	booking.OriginalAmount = model.RoundMoney(price * float64(booking.NumberOfGuests))
	booking.MemberDiscount = s.loyalty.Discount(booking.OriginalAmount, user.MemberTier)
	booking.TotalAmount = model.RoundMoney(booking.OriginalAmount - booking.MemberDiscount - booking.PointsDiscount)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if req.Guests != nil {
		if err := s.bookings.DeleteGuests(ctx, tx, booking.ID); err != nil {
			return nil, err
		}
		guests := make([]*model.BookingGuest, 0, len(req.Guests))
		for _, g := range req.Guests {
			guests = append(guests, &model.BookingGuest{FullName: g.FullName, Age: g.Age, Phone: g.Phone})
		}
		if err := s.bookings.CreateGuests(ctx, tx, booking.ID, guests); err != nil {
			return nil, err
		}
		booking.Guests = guests
	}

	if err := s.bookings.Update(ctx, tx, booking); err != nil {
		return nil, err
	}

	if booking.DepartureID != nil {
		recomputed, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID)
		if err != nil {
			return nil, err
		}
		if recomputed.BookedGuests > recomputed.MaxGuests {
			return nil, apperr.Validationf("not enough slots available on this departure")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking updated", zap.Int64("booking_id", booking.ID))
	s.writeAudit(ctx, &booking.UserID, "booking.update", booking.ID,
		fmt.Sprintf("Booking %s updated", booking.Code))

	return booking, nil
}

// TransitionStatus переводит бронирование по state machine:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled|no_show,
// конечные статусы переходов не принимают.
func (s *BookingService) TransitionStatus(ctx context.Context, id int64, newStatusRaw string, actorID *int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}

	newStatus, err := model.ParseBookingStatus(newStatusRaw)
	if err != nil {
		return nil, apperr.Validationf("unknown booking status %q", newStatusRaw)
	}

	prev := booking.Status
	if !model.CanTransition(prev, newStatus) {
		return nil, apperr.Validationf("cannot transition booking from %s to %s", prev, newStatus)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking.Status = newStatus
	if newStatus == model.BookingStatusCancelled {
		now := time.Now()
		booking.CancelledAt = &now
	}

	if err := s.bookings.Update(ctx, tx, booking); err != nil {
		return nil, err
	}

	// Начисление при завершении: защищено журналом, повторный переход
	// в completed ничего не доначислит
	if newStatus == model.BookingStatusCompleted && prev != model.BookingStatusCompleted &&
		booking.PaymentStatus.Settled() {
		if _, err := s.loyalty.AwardForBooking(ctx, tx, booking.UserID, booking.TotalAmount, booking.Code); err != nil {
			return nil, err
		}
	}

	if booking.DepartureID != nil {
		if _, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", booking.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(newStatus)),
	)
	s.writeAudit(ctx, actorID, "booking.status", booking.ID,
		fmt.Sprintf("Booking %s: %s -> %s", booking.Code, prev, newStatus))

	return booking, nil
}

// RecordPayment фиксирует изменение статуса оплаты. Оплата двигает
// pending -> confirmed автоматически и начисляет баллы один раз;
// возврат или провал после оплаты снимает начисленные баллы.
func (s *BookingService) RecordPayment(ctx context.Context, id int64, req *PaymentUpdateRequest) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}

	newPS, err := model.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return nil, apperr.Validationf("unknown payment status %q", req.PaymentStatus)
	}

	prevPS := booking.PaymentStatus

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking.PaymentStatus = newPS
	if req.TransactionID != "" {
		booking.PaymentTransactionID = &req.TransactionID
	} else if newPS.Settled() && booking.PaymentTransactionID == nil {
		generated := uuid.NewString()
		booking.PaymentTransactionID = &generated
	}
	if newPS.Settled() {
		now := time.Now()
		booking.PaymentDate = &now
	}
	if req.RefundAmount != nil {
		booking.RefundAmount = *req.RefundAmount
	}

	if newPS.Settled() && !prevPS.Settled() {
		if booking.Status == model.BookingStatusPending {
			booking.Status = model.BookingStatusConfirmed
		}
		if _, err := s.loyalty.AwardForBooking(ctx, tx, booking.UserID, booking.TotalAmount, booking.Code); err != nil {
			return nil, err
		}
	}

	if (newPS == model.PaymentStatusRefunded || newPS == model.PaymentStatusFailed) && prevPS.Settled() {
		if _, err := s.loyalty.ClawBack(ctx, tx, booking.UserID, booking.TotalAmount, &booking.Code); err != nil {
			return nil, err
		}
	}

	if err := s.bookings.Update(ctx, tx, booking); err != nil {
		return nil, err
	}

	if booking.DepartureID != nil {
		if _, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Payment recorded",
		zap.Int64("booking_id", booking.ID),
		zap.String("from", string(prevPS)),
		zap.String("to", string(newPS)),
	)
	s.writeAudit(ctx, nil, "booking.payment", booking.ID,
		fmt.Sprintf("Booking %s payment: %s -> %s", booking.Code, prevPS, newPS))
	go s.notify.PaymentRecorded(context.Background(), booking)

	return booking, nil
}

// Cancel отменяет бронирование. Процент возврата зависит от срока до
// тура: от 7 дней — 100%, от 3 до 7 — 50%, меньше — ничего.
func (s *BookingService) Cancel(ctx context.Context, id int64, req *CancelBookingRequest) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}
	if booking.Status == model.BookingStatusCancelled {
		return nil, apperr.Conflictf("booking is already cancelled")
	}
	if booking.Status == model.BookingStatusCompleted {
		return nil, apperr.Validationf("completed booking cannot be cancelled")
	}

	daysUntilTour := int(time.Until(booking.TourDate).Hours() / 24)
	refundPercent := model.RefundPercent(daysUntilTour)
	refundAmount := model.RoundMoney(booking.TotalAmount * refundPercent)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = req.Reason
	booking.RefundAmount = refundAmount
	if booking.PaymentStatus == model.PaymentStatusPaid && refundAmount > 0 {
		booking.PaymentStatus = model.PaymentStatusRefunded
	}

	if err := s.bookings.Update(ctx, tx, booking); err != nil {
		return nil, err
	}

	// Отменённое бронирование выпадает из свёртки — место освобождается
	if booking.DepartureID != nil {
		if _, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", booking.ID),
		zap.Int("days_until_tour", daysUntilTour),
		zap.Float64("refund_amount", refundAmount),
	)
	s.writeAudit(ctx, &booking.UserID, "booking.cancel", booking.ID,
		fmt.Sprintf("Booking %s cancelled, refund %.2f", booking.Code, refundAmount))
	go s.notify.BookingCancelled(context.Background(), booking)

	return booking, nil
}

// AssignGuide назначает или снимает гида с бронирования. Гид должен
// быть назначен на тур; занятость в дату тура не блокирует, а даёт
// предупреждение в ответе.
func (s *BookingService) AssignGuide(ctx context.Context, id int64, guideID *int64) (*model.Booking, string, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, "", apperr.NotFoundf("booking not found")
	}
	if booking.Status == model.BookingStatusCancelled || booking.Status == model.BookingStatusCompleted {
		return nil, "", apperr.Validationf("cannot assign guide to a %s booking", booking.Status)
	}

	warning := ""
	if guideID != nil {
		assigned, err := s.guides.IsAssignedToTour(ctx, *guideID, booking.TourID)
		if err != nil {
			return nil, "", fmt.Errorf("check guide assignment: %w", err)
		}
		if !assigned {
			return nil, "", apperr.Validationf("guide is not assigned to this tour")
		}

		available, err := s.guides.IsAvailableOn(ctx, *guideID, booking.TourDate)
		if err != nil {
			return nil, "", fmt.Errorf("check guide availability: %w", err)
		}
		if !available {
			warning = "guide is not available on the booking date"
		}
	}

	booking.GuideID = guideID
	if err := s.bookings.Update(ctx, nil, booking); err != nil {
		return nil, "", err
	}

	s.writeAudit(ctx, nil, "booking.guide", booking.ID,
		fmt.Sprintf("Booking %s guide assignment changed", booking.Code))

	return booking, warning, nil
}

// GetBooking возвращает бронирование вместе со списком гостей
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}

	guests, err := s.bookings.GetGuests(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking guests: %w", err)
	}
	booking.Guests = guests

	return booking, nil
}

// GetBookingByCode находит бронирование по коду вида PREFIX-YYYYMMDD-XXXX
func (s *BookingService) GetBookingByCode(ctx context.Context, code string) (*model.Booking, error) {
	booking, err := s.bookings.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get booking by code: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFoundf("booking not found")
	}

	guests, err := s.bookings.GetGuests(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("get booking guests: %w", err)
	}
	booking.Guests = guests

	return booking, nil
}

// ListUserBookings все бронирования пользователя
func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]*model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// DeleteBooking мягко удаляет бронирование. Строка остаётся в БД, но
// выпадает из выборок и из свёртки занятости.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64, actorID *int64) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return apperr.NotFoundf("booking not found")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.bookings.SoftDelete(ctx, tx, id); err != nil {
		return err
	}

	if booking.DepartureID != nil {
		if _, err := s.capacity.Recompute(ctx, tx, *booking.DepartureID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Booking deleted", zap.Int64("booking_id", id))
	s.writeAudit(ctx, actorID, "booking.delete", id,
		fmt.Sprintf("Booking %s deleted", booking.Code))

	return nil
}

// writeAudit пишет запись аудита; отказ записи логируется и глотается,
// ответ клиенту он не блокирует никогда
func (s *BookingService) writeAudit(ctx context.Context, userID *int64, action string, entityID int64, description string) {
	if s.auditLog == nil {
		return
	}

	entry := &model.AuditLog{
		UserID:      userID,
		Action:      action,
		EntityName:  "booking",
		EntityID:    entityID,
		Description: description,
	}
	if err := s.auditLog.Insert(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.Error(err))
	}
}
