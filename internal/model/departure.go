package model

import "time"

type DepartureStatus string

const (
	DepartureStatusAvailable  DepartureStatus = "available"
	DepartureStatusAlmostFull DepartureStatus = "almost_full"
	DepartureStatusFull       DepartureStatus = "full"
	DepartureStatusCancelled  DepartureStatus = "cancelled"
	DepartureStatusCompleted  DepartureStatus = "completed"
)

// Departure конкретный выезд тура с собственной датой и вместимостью.
// BookedGuests — материализованная сумма по активным бронированиям,
// пересчитывается целиком, а не инкрементируется по месту.
type Departure struct {
	ID             int64           `json:"id"`
	TourID         int64           `json:"tour_id"`
	DepartureDate  time.Time       `json:"departure_date"`
	EndDate        time.Time       `json:"end_date"`
	MaxGuests      int             `json:"max_guests"`
	BookedGuests   int             `json:"booked_guests"`
	SpecialPrice   *float64        `json:"special_price"`
	Status         DepartureStatus `json:"status"`
	DefaultGuideID *int64          `json:"default_guide_id"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AvailableSlots сколько мест ещё можно продать
func (d *Departure) AvailableSlots() int {
	return d.MaxGuests - d.BookedGuests
}

// EffectivePrice цена места: спеццена выезда либо базовая цена тура
func (d *Departure) EffectivePrice(tourPrice float64) float64 {
	if d.SpecialPrice != nil {
		return *d.SpecialPrice
	}
	return tourPrice
}

// DeriveDepartureStatus выводит статус выезда из занятости.
// Терминальные статусы cancelled/completed не перезаписываются.
func DeriveDepartureStatus(booked, max int, current DepartureStatus) DepartureStatus {
	if current == DepartureStatusCancelled || current == DepartureStatusCompleted {
		return current
	}
	if booked >= max {
		return DepartureStatusFull
	}
	if float64(booked) >= 0.8*float64(max) {
		return DepartureStatusAlmostFull
	}
	return DepartureStatusAvailable
}
