package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// CountActiveBySlot количество активных бронирований по слотам в [from, to), ключ slot.Unix()
	CountActiveBySlot(ctx context.Context, from, to time.Time) (map[int64]int, error)
}

// ScheduleProvider источник расписания и закрытых дат (через кэш)
type ScheduleProvider interface {
	LoadSchedule(ctx context.Context) (*domain.WeeklySchedule, error)
	LoadUnavailableSet(ctx context.Context) (domain.UnavailableSet, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
