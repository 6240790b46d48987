package model

import "time"

type TourStatus string

const (
	TourStatusDraft    TourStatus = "draft"
	TourStatusActive   TourStatus = "active"
	TourStatusArchived TourStatus = "archived"
)

type Tour struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	MaxGuests   int        `json:"max_guests"`
	Status      TourStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Guide struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Rating    float64 `json:"rating"`
	IsActive  bool    `json:"is_active"`
}

// TourGuide связывает гида с туром
type TourGuide struct {
	TourID    int64  `json:"tour_id"`
	GuideID   int64  `json:"guide_id"`
	IsDefault bool   `json:"is_default"`
	Guide     *Guide `json:"guide,omitempty"`
}
