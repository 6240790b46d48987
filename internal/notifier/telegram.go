package notifier

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/wandertrip/tour_booking/internal/model"
	"go.uber.org/zap"
)

// Telegram шлёт служебные уведомления о бронированиях в чат операторов.
// Отправка fire-and-forget: ошибки логируются и никогда не доходят
// до клиента. Пустой токен полностью отключает уведомления.
type Telegram struct {
	bot    *bot.Bot
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		logger.Info("Telegram notifier disabled")
		return nil, nil
	}

	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Telegram{bot: b, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) send(ctx context.Context, text string) {
	if t == nil || t.bot == nil {
		return
	}

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   text,
	})
	if err != nil {
		t.logger.Warn("Failed to send ops notification", zap.Error(err))
	}
}

// BookingCreated уведомление о новом бронировании
func (t *Telegram) BookingCreated(ctx context.Context, b *model.Booking) {
	t.send(ctx, fmt.Sprintf("Новое бронирование %s: тур %d, гостей %d, сумма %.2f",
		b.Code, b.TourID, b.NumberOfGuests, b.TotalAmount))
}

// BookingCancelled уведомление об отмене
func (t *Telegram) BookingCancelled(ctx context.Context, b *model.Booking) {
	t.send(ctx, fmt.Sprintf("Отмена бронирования %s: возврат %.2f (%s)",
		b.Code, b.RefundAmount, b.CancellationReason))
}

// PaymentRecorded уведомление об изменении статуса оплаты
func (t *Telegram) PaymentRecorded(ctx context.Context, b *model.Booking) {
	t.send(ctx, fmt.Sprintf("Оплата по бронированию %s: статус %s, сумма %.2f",
		b.Code, b.PaymentStatus, b.TotalAmount))
}
