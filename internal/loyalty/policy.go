package loyalty

import (
	"math"

	"github.com/wandertrip/tour_booking/internal/model"
)

// Policy числовые параметры программы лояльности. Константы вынесены
// в структуру, чтобы тюнинг не требовал пересборки.
type Policy struct {
	SilverThreshold int // баллов для уровня silver
	GoldThreshold   int // баллов для уровня gold

	BronzeRate float64
	SilverRate float64
	GoldRate   float64

	EarnUnitAmount    float64 // сумма, за которую начисляется EarnPointsPerUnit
	EarnPointsPerUnit float64 // баллов за каждую EarnUnitAmount оплаты

	RedeemStep    int     // баллы списываются только кратно этому шагу
	PointValue    float64 // денежная ценность одного балла
	RedeemCapRate float64 // доля суммы, которую можно покрыть баллами
}

// DefaultPolicy параметры программы по умолчанию:
// bronze 3%, silver от 10000 баллов 5%, gold от 50000 баллов 10%;
// кэшбэк 100 баллов за каждые 10000 единиц оплаты; балл стоит 10 единиц;
// баллами можно покрыть не более половины суммы.
func DefaultPolicy() Policy {
	return Policy{
		SilverThreshold:   10000,
		GoldThreshold:     50000,
		BronzeRate:        0.03,
		SilverRate:        0.05,
		GoldRate:          0.10,
		EarnUnitAmount:    10000,
		EarnPointsPerUnit: 100,
		RedeemStep:        100,
		PointValue:        10,
		RedeemCapRate:     0.5,
	}
}

// TierFor уровень как чистая функция от суммарных баллов.
// Platinum существует в модели данных, но политикой не выдаётся.
func (p Policy) TierFor(points int) model.MemberTier {
	switch {
	case points >= p.GoldThreshold:
		return model.TierGold
	case points >= p.SilverThreshold:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

// DiscountRate ставка скидки для уровня
func (p Policy) DiscountRate(tier model.MemberTier) float64 {
	switch tier {
	case model.TierSilver:
		return p.SilverRate
	case model.TierGold, model.TierPlatinum:
		return p.GoldRate
	default:
		return p.BronzeRate
	}
}

// Discount скидка участника, округлённая до целых единиц валюты
func (p Policy) Discount(amount float64, tier model.MemberTier) float64 {
	return math.Round(amount * p.DiscountRate(tier))
}

// PointsEarned баллы за оплаченную сумму
func (p Policy) PointsEarned(amountPaid float64) int {
	return int(math.Floor(amountPaid / p.EarnUnitAmount * p.EarnPointsPerUnit))
}

// MaxRedeemable максимум баллов, который можно списать против суммы
func (p Policy) MaxRedeemable(amount float64) int {
	return int(math.Floor(amount * p.RedeemCapRate / p.PointValue))
}

// RedemptionValue денежный эквивалент списанных баллов
func (p Policy) RedemptionValue(points int) float64 {
	return float64(points) * p.PointValue
}

// ValidRedeemAmount баллы к списанию положительны и кратны шагу
func (p Policy) ValidRedeemAmount(points int) bool {
	return points > 0 && points%p.RedeemStep == 0
}
