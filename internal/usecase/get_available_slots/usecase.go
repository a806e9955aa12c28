package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	scheduleService "github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
	"github.com/m04kA/SMC-ClinicBooking/pkg/retry"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

// UseCase use case для получения доступных слотов на дату
type UseCase struct {
	bookingRepo      BookingRepository
	scheduleProvider ScheduleProvider
	policy           domain.BookingPolicy
	retryPolicy      retry.Policy
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleProvider ScheduleProvider,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		scheduleProvider: scheduleProvider,
		policy:           policy,
		retryPolicy:      retry.DefaultPolicy(),
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Заполненные слоты возвращаются с AvailableSpots = 0
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s", req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)

	// 3. Валидация даты по окну записи
	if err := validateDate(uc.policy, date, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем расписание и закрытые даты (через кэш)
	schedule, err := uc.scheduleProvider.LoadSchedule(ctx)
	if err != nil {
		return nil, uc.wrapErr("failed to load schedule", err)
	}

	unavailable, err := uc.scheduleProvider.LoadUnavailableSet(ctx)
	if err != nil {
		return nil, uc.wrapErr("failed to load unavailable dates", err)
	}

	// 5. Генерируем слоты с учетом минимального времени до визита
	offered := uc.policy.OfferedSlots(*schedule, unavailable, date, now)
	if len(offered) == 0 {
		uc.logger.Info("GetAvailableSlots: no slots on %s", date.Format(domain.DateFormat))
		return &Response{Date: date, Slots: []domain.AvailableSlot{}}, nil
	}

	slots := make([]domain.AvailableSlot, len(offered))
	for i, start := range offered {
		slots[i] = domain.AvailableSlot{
			StartTime:       start,
			DurationMinutes: uc.policy.SlotDurationMinutes,
			AvailableSpots:  uc.policy.SlotCapacity,
			TotalSpots:      uc.policy.SlotCapacity,
		}
	}

	// 6. Получаем занятость слотов за сутки
	dayStart := uc.policy.SlotInstant(date, "00:00")
	dayEnd := dayStart.AddDate(0, 0, 1)

	taken, err := retry.Read(ctx, uc.retryPolicy, func() (map[int64]int, error) {
		return uc.bookingRepo.CountActiveBySlot(ctx, dayStart, dayEnd)
	})
	if err != nil {
		return nil, uc.wrapErr("failed to count bookings", err)
	}

	// 7. Вычисляем доступность для каждого слота
	slots = calculateAvailableSpots(uc.policy, date, slots, taken)

	uc.logger.Info("GetAvailableSlots: generated %d slots for date=%s", len(slots), date.Format(domain.DateFormat))

	return &Response{
		Date:  date,
		Slots: slots,
	}, nil
}

func (uc *UseCase) wrapErr(msg string, err error) error {
	if errors.Is(err, scheduleService.ErrStorageUnavailable) ||
		errors.Is(err, txmanager.ErrStorageUnavailable) ||
		txmanager.IsTransient(err) {
		uc.logger.Warn("GetAvailableSlots: %s: %v", msg, err)
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, msg, err)
	}
	uc.logger.Error("GetAvailableSlots: %s: %v", msg, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}
