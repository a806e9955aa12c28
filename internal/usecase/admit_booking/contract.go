package admit_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockSlot(ctx context.Context, slot time.Time, lockTimeout time.Duration) error
	CountActiveAtSlot(ctx context.Context, slot time.Time) (int, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	Get(ctx context.Context) (*domain.WeeklySchedule, error)
}

// UnavailableDateRepository интерфейс репозитория закрытых дат
type UnavailableDateRepository interface {
	LockDate(ctx context.Context, date time.Time, exclusive bool) error
	List(ctx context.Context, from, to *time.Time) ([]domain.UnavailableDate, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector счетчик исходов бронирования
type MetricsCollector interface {
	ObserveAdmission(outcome string)
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
