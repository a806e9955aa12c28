package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

const (
	scheduleKey         = "clinic-booking:schedule"
	unavailableDatesKey = "clinic-booking:unavailable-dates"
)

// Cache кэш расписания и закрытых дат в redis.
// Промах возвращает found == false без ошибки
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetSchedule возвращает расписание из кэша
func (c *Cache) GetSchedule(ctx context.Context) (*domain.WeeklySchedule, bool, error) {
	var schedule domain.WeeklySchedule
	found, err := c.get(ctx, scheduleKey, &schedule)
	if err != nil || !found {
		return nil, found, err
	}
	return &schedule, true, nil
}

// SetSchedule сохраняет расписание
func (c *Cache) SetSchedule(ctx context.Context, schedule *domain.WeeklySchedule) error {
	return c.set(ctx, scheduleKey, schedule)
}

// GetUnavailableDates возвращает все закрытые даты из кэша
func (c *Cache) GetUnavailableDates(ctx context.Context) ([]time.Time, bool, error) {
	var raw []string
	found, err := c.get(ctx, unavailableDatesKey, &raw)
	if err != nil || !found {
		return nil, found, err
	}

	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(domain.DateFormat, s)
		if err != nil {
			return nil, false, fmt.Errorf("%w: date %q: %v", ErrDecode, s, err)
		}
		dates = append(dates, d)
	}
	return dates, true, nil
}

// SetUnavailableDates сохраняет полный список закрытых дат
func (c *Cache) SetUnavailableDates(ctx context.Context, dates []time.Time) error {
	raw := make([]string, len(dates))
	for i, d := range dates {
		raw[i] = d.Format(domain.DateFormat)
	}
	return c.set(ctx, unavailableDatesKey, raw)
}

// Invalidate удаляет расписание и закрытые даты
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, scheduleKey, unavailableDatesKey).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrCache, err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", ErrCache, key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrDecode, key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrDecode, key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCache, key, err)
	}
	return nil
}
