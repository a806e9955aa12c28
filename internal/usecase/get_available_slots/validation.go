package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidInput, domain.NewValidationError("date", "is required"))
	}
	return nil
}

// validateDate проверяет, что дата не в прошлом и не дальше окна записи
func validateDate(policy domain.BookingPolicy, date time.Time, now time.Time) error {
	today := policy.Today(now)
	day := domain.DateOnly(date)

	if day.Before(today) {
		return ErrInvalidDate
	}

	if policy.HasAdvanceBookingLimit() && day.After(today.AddDate(0, 0, policy.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, policy.AdvanceBookingDays)
	}

	return nil
}

// calculateAvailableSpots вычисляет количество свободных мест для каждого слота
func calculateAvailableSpots(
	policy domain.BookingPolicy,
	date time.Time,
	starts []domain.AvailableSlot,
	taken map[int64]int,
) []domain.AvailableSlot {
	result := make([]domain.AvailableSlot, len(starts))

	for i, slot := range starts {
		instant := policy.SlotInstant(date, slot.StartTime)

		available := policy.SlotCapacity - taken[instant.Unix()]
		if available < 0 {
			available = 0
		}

		slot.AvailableSpots = available
		result[i] = slot
	}

	return result
}
