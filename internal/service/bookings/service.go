package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-ClinicBooking/pkg/retry"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

// Service сервис для работы с бронированиями (админская часть)
type Service struct {
	bookingRepo BookingRepository
	txManager   TransactionManager
	location    *time.Location
	retryPolicy retry.Policy
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		bookingRepo: bookingRepo,
		txManager:   txManager,
		location:    location,
		retryPolicy: retry.DefaultPolicy(),
		logger:      logger,
	}
}

// WithRetryPolicy заменяет параметры повторов чтения
func (s *Service) WithRetryPolicy(p retry.Policy) *Service {
	s.retryPolicy = p
	return s
}

// ListBookings возвращает страницу бронирований с фильтрацией и сортировкой.
// Строки и общее количество читаются в одном снимке
//
// Примеры использования:
// - Первая страница, новые сверху: ListBookings(ctx, &ListBookingsRequest{})
// - Поиск по фамилии: LastName = "иван"
// - Только подтверждённые чекапы: Types = ["checkup"], Statuses = ["confirmed"]
func (s *Service) ListBookings(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingsPageResponse, error) {
	query, err := req.ToDomainQuery()
	if err != nil {
		s.logger.Warn("ListBookings: invalid query: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.logger.Info("ListBookings: page=%d, perPage=%d, sort=%s.%s",
		query.Page, query.PerPage, query.SortField, query.SortDirection)

	page, err := retry.Read(ctx, s.retryPolicy, func() (*domain.BookingsPage, error) {
		var page domain.BookingsPage
		err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
			items, err := s.bookingRepo.List(ctx, query)
			if err != nil {
				return err
			}
			total, err := s.bookingRepo.Count(ctx, query.Filter)
			if err != nil {
				return err
			}
			page = domain.BookingsPage{
				Items:      items,
				TotalCount: total,
				Page:       query.Page,
				PerPage:    query.PerPage,
				PageCount:  domain.PageCount(total, query.PerPage),
			}
			return nil
		})
		return &page, err
	})
	if err != nil {
		s.logger.Error("ListBookings: repository error: %v", err)
		return nil, s.wrapStorageErr("ListBookings", err)
	}

	s.logger.Info("ListBookings: fetched %d of %d bookings", len(page.Items), page.TotalCount)
	return models.FromDomainBookingsPage(page, s.location), nil
}

// GetBooking получает бронирование по ID
func (s *Service) GetBooking(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetBooking: fetching booking id=%d", id)

	booking, err := retry.Read(ctx, s.retryPolicy, func() (*domain.Booking, error) {
		return s.bookingRepo.GetByID(ctx, id, false)
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetBooking: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetBooking: repository error for booking id=%d: %v", id, err)
		return nil, s.wrapStorageErr("GetBooking", err)
	}

	return models.FromDomainBooking(booking, s.location), nil
}

// UpdateStatus меняет статус бронирования по машине состояний
// pending -> confirmed | cancelled, confirmed -> cancelled
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s", id, req.Status)

	status, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return s.transition(ctx, "UpdateStatus", id, status)
}

// Cancel отменяет бронирование, слот освобождается
func (s *Service) Cancel(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d", id)
	return s.transition(ctx, "Cancel", id, domain.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, op string, id int64, status domain.BookingStatus) (*models.BookingResponse, error) {
	var updated *domain.Booking

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Блокируем строку
		booking, err := s.bookingRepo.GetByID(ctx, id, true)
		if err != nil {
			return err
		}

		// 2. Проверяем переход
		if err := booking.TransitionTo(status); err != nil {
			return err
		}

		// 3. Сохраняем
		updated, err = s.bookingRepo.UpdateStatus(ctx, id, status)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		case errors.Is(err, domain.ErrInvalidTransition):
			s.logger.Warn("%s: booking id=%d: %v", op, id, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		default:
			s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
			return nil, s.wrapStorageErr(op, err)
		}
	}

	s.logger.Info("%s: booking id=%d is now %s", op, id, updated.Status)
	return models.FromDomainBooking(updated, s.location), nil
}

func (s *Service) wrapStorageErr(op string, err error) error {
	if errors.Is(err, txmanager.ErrStorageUnavailable) || txmanager.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
