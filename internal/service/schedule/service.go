package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule/models"
	"github.com/m04kA/SMC-ClinicBooking/pkg/retry"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

// Service сервис расписания клиники и закрытых дат
type Service struct {
	scheduleRepo    ScheduleRepository
	unavailableRepo UnavailableDateRepository
	bookingRepo     BookingRepository
	cache           AvailabilityCache
	txManager       TransactionManager
	location        *time.Location
	retryPolicy     retry.Policy
	logger          Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	unavailableRepo UnavailableDateRepository,
	bookingRepo BookingRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		scheduleRepo:    scheduleRepo,
		unavailableRepo: unavailableRepo,
		bookingRepo:     bookingRepo,
		cache:           cache,
		txManager:       txManager,
		location:        location,
		retryPolicy:     retry.DefaultPolicy(),
		logger:          logger,
	}
}

// WithRetryPolicy заменяет параметры повторов чтения
func (s *Service) WithRetryPolicy(p retry.Policy) *Service {
	s.retryPolicy = p
	return s
}

// EnsureScheduleExists создаёт пустое (все дни выходные) расписание, если его нет.
// Вызывается один раз при старте
func (s *Service) EnsureScheduleExists(ctx context.Context) (*models.ScheduleResponse, error) {
	if err := s.scheduleRepo.EnsureExists(ctx); err != nil {
		s.logger.Error("EnsureScheduleExists: repository error: %v", err)
		return nil, s.wrapStorageErr("EnsureScheduleExists", err)
	}

	schedule, err := s.loadScheduleFromDB(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("EnsureScheduleExists: schedule is ready, updatedAt=%s", schedule.UpdatedAt.Format(time.RFC3339))
	return models.FromDomainSchedule(schedule), nil
}

// GetSchedule возвращает текущее расписание
func (s *Service) GetSchedule(ctx context.Context) (*models.ScheduleResponse, error) {
	schedule, err := s.LoadSchedule(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomainSchedule(schedule), nil
}

// LoadSchedule возвращает доменное расписание, сначала из кэша
func (s *Service) LoadSchedule(ctx context.Context) (*domain.WeeklySchedule, error) {
	cached, found, err := s.cache.GetSchedule(ctx)
	if err != nil {
		s.logger.Warn("LoadSchedule: cache read failed, falling back to database: %v", err)
	}
	if found {
		return cached, nil
	}

	schedule, err := s.loadScheduleFromDB(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSchedule(ctx, schedule); err != nil {
		s.logger.Warn("LoadSchedule: cache write failed: %v", err)
	}
	return schedule, nil
}

// UpdateSchedule заменяет расписание целиком.
// Существующие бронирования не затрагиваются
func (s *Service) UpdateSchedule(ctx context.Context, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("UpdateSchedule: replacing weekly schedule")

	// 1. Валидируем и сортируем периоды
	normalized, err := req.ToDomain().Normalize()
	if err != nil {
		s.logger.Warn("UpdateSchedule: invalid schedule: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	// 2. Сохраняем
	updated, err := s.scheduleRepo.Update(ctx, normalized)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Error("UpdateSchedule: schedule row is missing")
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("UpdateSchedule: repository error: %v", err)
		return nil, s.wrapStorageErr("UpdateSchedule", err)
	}

	// 3. Сбрасываем кэш
	s.invalidateCache(ctx, "UpdateSchedule")

	s.logger.Info("UpdateSchedule: schedule updated at %s", updated.UpdatedAt.Format(time.RFC3339))
	return models.FromDomainSchedule(updated), nil
}

// AddUnavailableDate закрывает день для записи. Повторное добавление не ошибка.
// День с активными бронированиями закрыть нельзя
func (s *Service) AddUnavailableDate(ctx context.Context, req *models.AddUnavailableDateRequest) (bool, error) {
	date := domain.DateOnly(req.Date)
	dateStr := date.Format(domain.DateFormat)
	s.logger.Info("AddUnavailableDate: closing date=%s", dateStr)

	if req.Reason != nil && len(*req.Reason) > domain.MaxReasonLength {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput,
			domain.NewValidationError("reason", fmt.Sprintf("must be at most %d characters", domain.MaxReasonLength)))
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var created bool
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Эксклюзивная блокировка даты: параллельная запись на этот день ждёт
		if err := s.unavailableRepo.LockDate(ctx, date, true); err != nil {
			return err
		}

		// 2. Проверяем активные бронирования на этот день
		active, err := s.bookingRepo.CountActiveInRange(ctx, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if active > 0 {
			s.logger.Warn("AddUnavailableDate: date=%s has %d active bookings", dateStr, active)
			return ErrDateHasBookings
		}

		// 3. Закрываем день
		created, err = s.unavailableRepo.Add(ctx, date, req.Reason)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDateHasBookings) {
			return false, err
		}
		s.logger.Error("AddUnavailableDate: failed for date=%s: %v", dateStr, err)
		return false, s.wrapStorageErr("AddUnavailableDate", err)
	}

	if created {
		s.invalidateCache(ctx, "AddUnavailableDate")
	}

	s.logger.Info("AddUnavailableDate: date=%s closed, created=%t", dateStr, created)
	return created, nil
}

// RemoveUnavailableDate открывает день. Удаление отсутствующей даты не ошибка
func (s *Service) RemoveUnavailableDate(ctx context.Context, date time.Time) (bool, error) {
	date = domain.DateOnly(date)
	dateStr := date.Format(domain.DateFormat)
	s.logger.Info("RemoveUnavailableDate: opening date=%s", dateStr)

	removed, err := s.unavailableRepo.Remove(ctx, date)
	if err != nil {
		s.logger.Error("RemoveUnavailableDate: repository error for date=%s: %v", dateStr, err)
		return false, s.wrapStorageErr("RemoveUnavailableDate", err)
	}

	if removed {
		s.invalidateCache(ctx, "RemoveUnavailableDate")
	}

	s.logger.Info("RemoveUnavailableDate: date=%s opened, removed=%t", dateStr, removed)
	return removed, nil
}

// ListUnavailableDates закрытые дни по возрастанию даты, границы включительно и необязательны
func (s *Service) ListUnavailableDates(ctx context.Context, from, to *time.Time) ([]models.UnavailableDateResponse, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.NewValidationError("to", "must not be before from"))
	}

	dates, err := retry.Read(ctx, s.retryPolicy, func() ([]domain.UnavailableDate, error) {
		return s.unavailableRepo.List(ctx, from, to)
	})
	if err != nil {
		s.logger.Error("ListUnavailableDates: repository error: %v", err)
		return nil, s.wrapStorageErr("ListUnavailableDates", err)
	}

	return models.FromDomainUnavailableDates(dates), nil
}

// LoadUnavailableSet множество всех закрытых дат, сначала из кэша
func (s *Service) LoadUnavailableSet(ctx context.Context) (domain.UnavailableSet, error) {
	cached, found, err := s.cache.GetUnavailableDates(ctx)
	if err != nil {
		s.logger.Warn("LoadUnavailableSet: cache read failed, falling back to database: %v", err)
	}
	if found {
		return domain.NewUnavailableSet(cached), nil
	}

	list, err := retry.Read(ctx, s.retryPolicy, func() ([]domain.UnavailableDate, error) {
		return s.unavailableRepo.List(ctx, nil, nil)
	})
	if err != nil {
		s.logger.Error("LoadUnavailableSet: repository error: %v", err)
		return nil, s.wrapStorageErr("LoadUnavailableSet", err)
	}

	dates := make([]time.Time, 0, len(list))
	for _, d := range list {
		dates = append(dates, d.Date)
	}

	if err := s.cache.SetUnavailableDates(ctx, dates); err != nil {
		s.logger.Warn("LoadUnavailableSet: cache write failed: %v", err)
	}
	return domain.NewUnavailableSet(dates), nil
}

func (s *Service) loadScheduleFromDB(ctx context.Context) (*domain.WeeklySchedule, error) {
	schedule, err := retry.Read(ctx, s.retryPolicy, func() (*domain.WeeklySchedule, error) {
		return s.scheduleRepo.Get(ctx)
	})
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Error("loadSchedule: schedule not initialised")
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("loadSchedule: repository error: %v", err)
		return nil, s.wrapStorageErr("loadSchedule", err)
	}
	return schedule, nil
}

func (s *Service) invalidateCache(ctx context.Context, op string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("%s: cache invalidation failed: %v", op, err)
	}
}

func (s *Service) wrapStorageErr(op string, err error) error {
	if errors.Is(err, txmanager.ErrStorageUnavailable) || txmanager.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
