package service

import (
	"context"
	"fmt"

	"github.com/wandertrip/tour_booking/internal/apperr"
	"github.com/wandertrip/tour_booking/internal/loyalty"
	"github.com/wandertrip/tour_booking/internal/model"
	"github.com/wandertrip/tour_booking/internal/repository/base"
	"go.uber.org/zap"
)

// LoyaltyService начисляет и списывает баллы лояльности. Баланс на
// пользователе и журнал меняются в одной транзакции; журнал только
// дописывается и считается авторитетным источником.
type LoyaltyService struct {
	db     DB
	users  UserStore
	points PointsStore
	policy loyalty.Policy
	logger *zap.Logger
}

func NewLoyaltyService(db DB, users UserStore, points PointsStore, policy loyalty.Policy, logger *zap.Logger) *LoyaltyService {
	return &LoyaltyService{
		db:     db,
		users:  users,
		points: points,
		policy: policy,
		logger: logger,
	}
}

// Policy текущие параметры программы
func (s *LoyaltyService) Policy() loyalty.Policy {
	return s.policy
}

// Discount скидка участника для суммы и уровня
func (s *LoyaltyService) Discount(amount float64, tier model.MemberTier) float64 {
	return s.policy.Discount(amount, tier)
}

// MaxRedeemable максимум баллов к списанию против суммы
func (s *LoyaltyService) MaxRedeemable(amount float64) int {
	return s.policy.MaxRedeemable(amount)
}

// inTx выполняет fn в транзакции вызывающего либо открывает свою
func (s *LoyaltyService) inTx(ctx context.Context, q base.Queryer, fn func(q base.Queryer) error) error {
	if q != nil {
		return fn(q)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AddPoints начисляет баллы за оплаченную сумму, дописывает журнал и
// пересчитывает уровень как чистую функцию нового итога. Возвращает
// число начисленных баллов, 0 если начислять нечего.
func (s *LoyaltyService) AddPoints(ctx context.Context, q base.Queryer, userID int64, amountPaid float64, description string, bookingCode *string) (int, error) {
	earned := s.policy.PointsEarned(amountPaid)
	if earned <= 0 {
		return 0, nil
	}

	err := s.inTx(ctx, q, func(q base.Queryer) error {
		total, err := s.users.AddPoints(ctx, q, userID, earned)
		if err != nil {
			return err
		}

		entry := &model.PointsHistory{
			UserID:          userID,
			TransactionType: model.PointsEarned,
			Points:          earned,
			Description:     description,
			BookingCode:     bookingCode,
		}
		if err := s.points.Append(ctx, q, entry); err != nil {
			return err
		}

		// Уровень пересчитывается только при начислении, не при списании
		if err := s.users.UpdateTier(ctx, q, userID, s.policy.TierFor(total)); err != nil {
			return err
		}

		s.logger.Info("Loyalty points earned",
			zap.Int64("user_id", userID),
			zap.Int("points", earned),
			zap.Int("balance", total),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return earned, nil
}

// Redeem списывает баллы с баланса, если их хватает
func (s *LoyaltyService) Redeem(ctx context.Context, q base.Queryer, userID int64, points int, description string, bookingCode *string) error {
	if points <= 0 {
		return apperr.Validationf("points to redeem must be positive")
	}

	return s.inTx(ctx, q, func(q base.Queryer) error {
		ok, err := s.users.DeductPoints(ctx, q, userID, points)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validationf("insufficient points balance")
		}

		entry := &model.PointsHistory{
			UserID:          userID,
			TransactionType: model.PointsRedeemed,
			Points:          -points,
			Description:     description,
			BookingCode:     bookingCode,
		}
		if err := s.points.Append(ctx, q, entry); err != nil {
			return err
		}

		s.logger.Info("Loyalty points redeemed",
			zap.Int64("user_id", userID),
			zap.Int("points", points),
		)
		return nil
	})
}

// ConvertPointsToMoney списывает баллы и возвращает их денежный
// эквивалент. Баллы должны быть кратны шагу списания.
func (s *LoyaltyService) ConvertPointsToMoney(ctx context.Context, q base.Queryer, userID int64, points int, bookingCode *string) (float64, error) {
	if !s.policy.ValidRedeemAmount(points) {
		return 0, apperr.Validationf("points to redeem must be a positive multiple of %d", s.policy.RedeemStep)
	}

	description := "Points redeemed against booking"
	if err := s.Redeem(ctx, q, userID, points, description, bookingCode); err != nil {
		return 0, err
	}

	return s.policy.RedemptionValue(points), nil
}

// AwardForBooking одноразовое начисление за бронирование: журнал
// служит защитой от повторного начисления по тому же коду.
func (s *LoyaltyService) AwardForBooking(ctx context.Context, q base.Queryer, userID int64, amountPaid float64, bookingCode string) (int, error) {
	awarded := 0
	err := s.inTx(ctx, q, func(q base.Queryer) error {
		exists, err := s.points.HasEarnedForBooking(ctx, q, bookingCode)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		description := fmt.Sprintf("Points earned for booking %s", bookingCode)
		awarded, err = s.AddPoints(ctx, q, userID, amountPaid, description, &bookingCode)
		return err
	})
	if err != nil {
		return 0, err
	}
	return awarded, nil
}

// ClawBack снимает баллы, начисленные за бронирование, при возврате
// оплаты. Сумма пересчитывается от текущего totalAmount бронирования;
// списывается не больше текущего баланса.
func (s *LoyaltyService) ClawBack(ctx context.Context, q base.Queryer, userID int64, amount float64, bookingCode *string) (int, error) {
	points := s.policy.PointsEarned(amount)
	if points <= 0 {
		return 0, nil
	}

	deducted := 0
	err := s.inTx(ctx, q, func(q base.Queryer) error {
		var err error
		deducted, err = s.users.DeductPointsClamped(ctx, q, userID, points)
		if err != nil {
			return err
		}
		if deducted == 0 {
			return nil
		}

		entry := &model.PointsHistory{
			UserID:          userID,
			TransactionType: model.PointsAdjusted,
			Points:          -deducted,
			Description:     "Points clawback for refunded payment",
			BookingCode:     bookingCode,
		}
		return s.points.Append(ctx, q, entry)
	})
	if err != nil {
		return 0, err
	}

	if deducted > 0 {
		s.logger.Info("Loyalty points clawed back",
			zap.Int64("user_id", userID),
			zap.Int("points", deducted),
		)
	}
	return deducted, nil
}

// Statement баланс пользователя вместе с журналом для сверки
func (s *LoyaltyService) Statement(ctx context.Context, userID int64) (*model.User, []*model.PointsHistory, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, nil, apperr.NotFoundf("user not found")
	}

	entries, err := s.points.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list points history: %w", err)
	}

	// Сверка с журналом: расхождение не ломает ответ, но попадает в лог
	sum, err := s.points.SumByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("sum points history: %w", err)
	}
	if sum != user.LoyaltyPoints {
		s.logger.Warn("Points ledger does not match user balance",
			zap.Int64("user_id", userID),
			zap.Int("balance", user.LoyaltyPoints),
			zap.Int("ledger_sum", sum),
		)
	}

	return user, entries, nil
}
