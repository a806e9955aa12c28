package domain

// Значения политики записи по умолчанию
const (
	DefaultSlotDurationMinutes     = 30
	DefaultSlotCapacity            = 1
	DefaultAdvanceBookingDays      = 0  // 0 = без ограничений
	DefaultMinBookingNoticeMinutes = 60 // 1 час
)

// Ограничения бизнес-валидации
const (
	MinSlotDurationMinutes  = 5
	MaxSlotDurationMinutes  = 480 // 8 часов
	MinSlotCapacity         = 1
	MaxSlotCapacity         = 100
	MinAdvanceBookingDays   = 0
	MaxAdvanceBookingDays   = 365 // 1 год
	MinBookingNoticeMinutes = 0
	MaxBookingNoticeMinutes = 10080 // 1 неделя

	MaxNameLength    = 100
	MaxPhoneLength   = 32
	MaxEmailLength   = 254
	MaxMessageLength = 1000
	MaxReasonLength  = 500
)

// Пагинация
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие место в слоте
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
