package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, если расписание не создано при старте
	ErrScheduleNotFound = errors.New("schedule: schedule not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedule: invalid input data")

	// ErrDateHasBookings возвращается при попытке закрыть день с активными бронированиями
	ErrDateHasBookings = errors.New("schedule: date has active bookings")

	// ErrStorageUnavailable возвращается, когда хранилище временно недоступно
	ErrStorageUnavailable = errors.New("schedule: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedule: internal error")
)
