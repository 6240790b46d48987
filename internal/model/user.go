package model

import "time"

type MemberTier string

const (
	TierBronze   MemberTier = "bronze"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierPlatinum MemberTier = "platinum" // зарезервирован, текущая политика его не выдаёт
)

// Rank возвращает порядковый номер уровня для сравнения
func (t MemberTier) Rank() int {
	switch t {
	case TierSilver:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	default:
		return 0
	}
}

type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	LoyaltyPoints    int        `json:"loyalty_points"`
	MemberTier       MemberTier `json:"member_tier"`
	MemberSince      time.Time  `json:"member_since"`
	LastTierUpdateAt *time.Time `json:"last_tier_update_at"`
	LastLoginAt      *time.Time `json:"last_login_at"`
	CreatedAt        time.Time  `json:"created_at"`
}
