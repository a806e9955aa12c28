package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// ScheduleRepository интерфейс репозитория недельного расписания
type ScheduleRepository interface {
	EnsureExists(ctx context.Context) error
	Get(ctx context.Context) (*domain.WeeklySchedule, error)
	Update(ctx context.Context, schedule domain.WeeklySchedule) (*domain.WeeklySchedule, error)
}

// UnavailableDateRepository интерфейс репозитория закрытых дат
type UnavailableDateRepository interface {
	LockDate(ctx context.Context, date time.Time, exclusive bool) error
	Add(ctx context.Context, date time.Time, reason *string) (bool, error)
	Remove(ctx context.Context, date time.Time) (bool, error)
	List(ctx context.Context, from, to *time.Time) ([]domain.UnavailableDate, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CountActiveInRange(ctx context.Context, from, to time.Time) (int, error)
}

// AvailabilityCache кэш расписания и закрытых дат
type AvailabilityCache interface {
	GetSchedule(ctx context.Context) (*domain.WeeklySchedule, bool, error)
	SetSchedule(ctx context.Context, schedule *domain.WeeklySchedule) error
	GetUnavailableDates(ctx context.Context) ([]time.Time, bool, error)
	SetUnavailableDates(ctx context.Context, dates []time.Time) error
	Invalidate(ctx context.Context) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
