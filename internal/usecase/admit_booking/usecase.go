package admit_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

const (
	DefaultAdmissionTimeout = 5 * time.Second
	DefaultLockTimeout      = 2 * time.Second
)

// Timeouts ограничения времени на запись
type Timeouts struct {
	Admission time.Duration // вся транзакция
	Lock      time.Duration // ожидание блокировки слота
}

// UseCase use case записи пациента на слот
type UseCase struct {
	bookingRepo     BookingRepository
	scheduleRepo    ScheduleRepository
	unavailableRepo UnavailableDateRepository
	txManager       TransactionManager
	policy          domain.BookingPolicy
	timeouts        Timeouts
	metrics         MetricsCollector
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	unavailableRepo UnavailableDateRepository,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	timeouts Timeouts,
	metrics MetricsCollector,
	logger Logger,
) *UseCase {
	if timeouts.Admission <= 0 {
		timeouts.Admission = DefaultAdmissionTimeout
	}
	if timeouts.Lock <= 0 {
		timeouts.Lock = DefaultLockTimeout
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:     bookingRepo,
		scheduleRepo:    scheduleRepo,
		unavailableRepo: unavailableRepo,
		txManager:       txManager,
		policy:          policy,
		timeouts:        timeouts,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case записи.
// Проверка слота и вставка выполняются под advisory-блокировкой слота,
// поэтому из параллельных запросов на один слот проходит не больше capacity
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AdmitBooking: date=%s, time=%s, type=%s",
		req.Date.Format(domain.DateFormat), req.StartTime, req.Type)

	result, err := uc.admit(ctx, req)
	uc.metrics.ObserveAdmission(outcome(err))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("AdmitBooking: successfully created booking id=%d at %s", result.ID, result.Slot.Format(time.RFC3339))
	return result, nil
}

func (uc *UseCase) admit(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("AdmitBooking: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// 2. Получаем текущее время и момент начала слота
	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)
	slot := uc.policy.SlotInstant(date, req.StartTime)

	ctx, cancel := context.WithTimeout(ctx, uc.timeouts.Admission)
	defer cancel()

	var result *domain.Booking

	// 3. Транзакция READ COMMITTED под блокировкой слота
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем слот: конкуренты за этот слот ждут коммита
		if err := uc.bookingRepo.LockSlot(txCtx, slot, uc.timeouts.Lock); err != nil {
			return err
		}

		// 3.2. Разделяемая блокировка даты против параллельного закрытия дня
		if err := uc.unavailableRepo.LockDate(txCtx, date, false); err != nil {
			return err
		}

		// 3.3. Пересчитываем слоты по данным из БД, а не из кэша
		schedule, err := uc.scheduleRepo.Get(txCtx)
		if err != nil {
			return err
		}

		closed, err := uc.unavailableRepo.List(txCtx, &date, &date)
		if err != nil {
			return err
		}
		unavailable := make([]time.Time, 0, len(closed))
		for _, d := range closed {
			unavailable = append(unavailable, d.Date)
		}

		offered := uc.policy.OfferedSlots(*schedule, domain.NewUnavailableSet(unavailable), date, now)
		if !domain.ContainsSlot(offered, req.StartTime) {
			uc.logger.Warn("AdmitBooking: slot %s %s is not offered",
				date.Format(domain.DateFormat), req.StartTime)
			return ErrSlotNotOffered
		}

		// 3.4. Проверяем свободные места
		taken, err := uc.bookingRepo.CountActiveAtSlot(txCtx, slot)
		if err != nil {
			return err
		}
		if taken >= uc.policy.SlotCapacity {
			uc.logger.Warn("AdmitBooking: slot not available, %d/%d spots taken", taken, uc.policy.SlotCapacity)
			return ErrSlotTaken
		}

		// 3.5. Создаем бронирование
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			Type:      domain.BookingType(req.Type),
			Status:    domain.StatusPending,
			Slot:      slot,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Email:     req.Email,
			Message:   req.Message,
		})
		if err != nil {
			return err
		}

		result = created
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotOffered), errors.Is(err, ErrSlotTaken):
			return nil, err
		case errors.Is(err, txmanager.ErrStorageUnavailable), txmanager.IsTransient(err):
			uc.logger.Warn("AdmitBooking: storage unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		default:
			uc.logger.Error("AdmitBooking: failed to create booking: %v", err)
			return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
	}

	return &Response{
		ID:        result.ID,
		Type:      string(result.Type),
		Status:    string(result.Status),
		Date:      result.Date(uc.policy.Location),
		StartTime: result.StartTime(uc.policy.Location),
		Slot:      result.Slot,
		FirstName: result.FirstName,
		LastName:  result.LastName,
		Phone:     result.Phone,
		Email:     result.Email,
		Message:   result.Message,
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAdmitted
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, ErrSlotNotOffered):
		return OutcomeSlotNotOffered
	case errors.Is(err, ErrSlotTaken):
		return OutcomeSlotTaken
	case errors.Is(err, ErrStorageUnavailable):
		return OutcomeStorageUnavailable
	default:
		return OutcomeError
	}
}
