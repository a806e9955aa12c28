package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsActive returns true if a booking in this status occupies its slot
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether the status machine allows s -> next.
// pending -> confirmed | cancelled, confirmed -> cancelled, cancelled is terminal
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

// BookingType тип визита
type BookingType string

const (
	TypeConsultation BookingType = "consultation"
	TypeCheckup      BookingType = "checkup"
	TypeTreatment    BookingType = "treatment"
	TypeFollowUp     BookingType = "follow_up"
)

// BookingTypes все допустимые типы визитов
var BookingTypes = []BookingType{
	TypeConsultation,
	TypeCheckup,
	TypeTreatment,
	TypeFollowUp,
}

// IsValid returns true for a known booking type
func (t BookingType) IsValid() bool {
	for _, known := range BookingTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Booking represents a patient booking
// Записи никогда не удаляются, отмена переводит статус в cancelled
type Booking struct {
	ID        int64
	Type      BookingType
	Status    BookingStatus
	Slot      time.Time // начало слота
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Message   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies its slot
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// Date возвращает календарную дату слота в часовом поясе клиники
func (b *Booking) Date(loc *time.Location) time.Time {
	return DateOnly(b.Slot.In(loc))
}

// StartTime возвращает время начала слота в часовом поясе клиники
func (b *Booking) StartTime(loc *time.Location) types.TimeString {
	return types.NewTimeString(b.Slot.In(loc))
}

// TransitionTo меняет статус, если переход разрешён
func (b *Booking) TransitionTo(next BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	return nil
}
