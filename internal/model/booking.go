package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Создано, ждёт подтверждения
	BookingStatusConfirmed BookingStatus = "confirmed" // Подтверждено
	BookingStatusCompleted BookingStatus = "completed" // Тур состоялся
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
	BookingStatusNoShow    BookingStatus = "no_show"   // Клиент не явился
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusFailed        PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
)

// Settled считается ли оплата состоявшейся (полностью или частично)
func (p PaymentStatus) Settled() bool {
	return p == PaymentStatusPaid || p == PaymentStatusPartiallyPaid
}

// Terminal бронирование в конечном статусе, переходы запрещены
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

// CanTransition проверяет допустимость перехода статуса бронирования
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCompleted || to == BookingStatusCancelled || to == BookingStatusNoShow
	default:
		return false
	}
}

// RefundPercent доля возврата в зависимости от срока до тура
func RefundPercent(daysUntilTour int) float64 {
	switch {
	case daysUntilTour >= 7:
		return 1.0
	case daysUntilTour >= 3:
		return 0.5
	default:
		return 0
	}
}

// RoundMoney округляет денежную сумму до стандартной точности валюты
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "")
}

// ParseBookingStatus разбирает статус из строки, регистр не важен
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch normalizeEnum(s) {
	case "pending":
		return BookingStatusPending, nil
	case "confirmed":
		return BookingStatusConfirmed, nil
	case "completed":
		return BookingStatusCompleted, nil
	case "cancelled", "canceled":
		return BookingStatusCancelled, nil
	case "noshow":
		return BookingStatusNoShow, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// ParsePaymentStatus разбирает статус оплаты из строки
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch normalizeEnum(s) {
	case "pending":
		return PaymentStatusPending, nil
	case "paid":
		return PaymentStatusPaid, nil
	case "partiallypaid":
		return PaymentStatusPartiallyPaid, nil
	case "refunded":
		return PaymentStatusRefunded, nil
	case "failed":
		return PaymentStatusFailed, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// ParsePaymentMethod разбирает способ оплаты из строки
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch normalizeEnum(s) {
	case "cash":
		return PaymentMethodCash, nil
	case "creditcard", "card":
		return PaymentMethodCreditCard, nil
	case "banktransfer":
		return PaymentMethodBankTransfer, nil
	case "ewallet":
		return PaymentMethodEWallet, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type Booking struct {
	ID                   int64         `json:"id"`
	Code                 string        `json:"code"`
	UserID               int64         `json:"user_id"`
	TourID               int64         `json:"tour_id"`
	DepartureID          *int64        `json:"departure_id"`
	GuideID              *int64        `json:"guide_id"`
	TourDate             time.Time     `json:"tour_date"`
	NumberOfGuests       int           `json:"number_of_guests"`
	OriginalAmount       float64       `json:"original_amount"`
	MemberDiscount       float64       `json:"member_discount"`
	PointsRedeemed       int           `json:"points_redeemed"`
	PointsDiscount       float64       `json:"points_discount"`
	TotalAmount          float64       `json:"total_amount"`
	Status               BookingStatus `json:"status"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	PaymentMethod        PaymentMethod `json:"payment_method"`
	PaymentTransactionID *string       `json:"payment_transaction_id"`
	PaymentDate          *time.Time    `json:"payment_date"`
	RefundAmount         float64       `json:"refund_amount"`
	CancelledAt          *time.Time    `json:"cancelled_at"`
	CancellationReason   string        `json:"cancellation_reason"`
	Notes                string        `json:"notes"`
	DeletedAt            *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Guests []*BookingGuest `json:"guests,omitempty"`
}

// BookingGuest участник поездки в составе бронирования
type BookingGuest struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	FullName  string `json:"full_name"`
	Age       int    `json:"age"`
	Phone     string `json:"phone"`
}
