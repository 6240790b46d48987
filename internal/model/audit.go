package model

import "time"

// AuditLog запись аудита действий над сущностями
type AuditLog struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id"`
	Action      string    `json:"action"`
	EntityName  string    `json:"entity_name"`
	EntityID    int64     `json:"entity_id"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	CreatedAt   time.Time `json:"created_at"`
}
