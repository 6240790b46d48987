package model

import "time"

type PointsTransactionType string

const (
	PointsEarned   PointsTransactionType = "earned"
	PointsRedeemed PointsTransactionType = "redeemed"
	PointsAdjusted PointsTransactionType = "adjusted"
)

// PointsHistory запись в журнале баллов. Журнал только дописывается,
// свёртка всех записей пользователя должна давать его текущий баланс.
type PointsHistory struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"user_id"`
	TransactionType PointsTransactionType `json:"transaction_type"`
	Points          int                   `json:"points"` // со знаком: начисление +, списание -
	Description     string                `json:"description"`
	BookingCode     *string               `json:"booking_code"`
	CreatedAt       time.Time             `json:"created_at"`
}
