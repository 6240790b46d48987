package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wandertrip/tour_booking/internal/model"
)

// Availability кэшируемый снимок занятости выезда
type Availability struct {
	BookedGuests int                   `json:"booked_guests"`
	MaxGuests    int                   `json:"max_guests"`
	Status       model.DepartureStatus `json:"status"`
}

// DepartureCache кэш занятости выездов в Redis с явной инвалидацией
// при каждом пересчёте. Отсутствующий клиент отключает кэширование.
type DepartureCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDepartureCache(client *redis.Client) *DepartureCache {
	return &DepartureCache{client: client, ttl: 5 * time.Minute}
}

func key(departureID int64) string {
	return fmt.Sprintf("departure:%d", departureID)
}

// Get возвращает снимок занятости, если он есть в кэше
func (c *DepartureCache) Get(ctx context.Context, departureID int64) (*Availability, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key(departureID)).Result()
	if err != nil {
		return nil, false
	}

	var av Availability
	if err := json.Unmarshal([]byte(raw), &av); err != nil {
		return nil, false
	}
	return &av, true
}

// Set сохраняет снимок занятости
func (c *DepartureCache) Set(ctx context.Context, departureID int64, av Availability) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(av)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(departureID), raw, c.ttl)
}

// Invalidate сбрасывает кэш выезда, вызывается при каждом пересчёте
func (c *DepartureCache) Invalidate(ctx context.Context, departureID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key(departureID))
}
