package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// BookingPolicy параметры записи клиники, задаются при старте
type BookingPolicy struct {
	SlotDurationMinutes     int
	SlotCapacity            int
	MinBookingNoticeMinutes int
	AdvanceBookingDays      int // 0 = без ограничений
	Location                *time.Location
}

// DefaultPolicy политика со значениями по умолчанию в UTC
func DefaultPolicy() BookingPolicy {
	return BookingPolicy{
		SlotDurationMinutes:     DefaultSlotDurationMinutes,
		SlotCapacity:            DefaultSlotCapacity,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		Location:                time.UTC,
	}
}

func (p BookingPolicy) Validate() error {
	if p.SlotDurationMinutes < MinSlotDurationMinutes || p.SlotDurationMinutes > MaxSlotDurationMinutes {
		return NewValidationError("slotDurationMinutes",
			fmt.Sprintf("must be between %d and %d", MinSlotDurationMinutes, MaxSlotDurationMinutes))
	}
	if p.SlotCapacity < MinSlotCapacity || p.SlotCapacity > MaxSlotCapacity {
		return NewValidationError("slotCapacity",
			fmt.Sprintf("must be between %d and %d", MinSlotCapacity, MaxSlotCapacity))
	}
	if p.MinBookingNoticeMinutes < MinBookingNoticeMinutes || p.MinBookingNoticeMinutes > MaxBookingNoticeMinutes {
		return NewValidationError("minBookingNoticeMinutes",
			fmt.Sprintf("must be between %d and %d", MinBookingNoticeMinutes, MaxBookingNoticeMinutes))
	}
	if p.AdvanceBookingDays < MinAdvanceBookingDays || p.AdvanceBookingDays > MaxAdvanceBookingDays {
		return NewValidationError("advanceBookingDays",
			fmt.Sprintf("must be between %d and %d", MinAdvanceBookingDays, MaxAdvanceBookingDays))
	}
	return nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

func (p BookingPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Today текущая календарная дата клиники
func (p BookingPolicy) Today(now time.Time) time.Time {
	return DateOnly(now.In(p.location()))
}

// SlotInstant момент начала слота start в дату date по часовому поясу клиники
func (p BookingPolicy) SlotInstant(date time.Time, start types.TimeString) time.Time {
	return start.On(date, p.location())
}

// DateInWindow дата не в прошлом и не дальше AdvanceBookingDays от сегодня
func (p BookingPolicy) DateInWindow(date, now time.Time) bool {
	today := p.Today(now)
	day := DateOnly(date)

	if day.Before(today) {
		return false
	}
	if p.HasAdvanceBookingLimit() && day.After(today.AddDate(0, 0, p.AdvanceBookingDays)) {
		return false
	}
	return true
}

// OfferedSlots слоты, доступные для записи на дату с учётом окна записи
// и минимального времени до начала визита
func (p BookingPolicy) OfferedSlots(
	schedule WeeklySchedule,
	unavailable UnavailableSet,
	date time.Time,
	now time.Time,
) []types.TimeString {
	if !p.DateInWindow(date, now) {
		return []types.TimeString{}
	}

	slots := GenerateSlots(schedule, unavailable, date, p.SlotDurationMinutes)
	if !DateOnly(date).Equal(p.Today(now)) {
		return slots
	}

	local := now.In(p.location())
	earliest := local.Hour()*60 + local.Minute() + p.MinBookingNoticeMinutes

	offered := make([]types.TimeString, 0, len(slots))
	for _, slot := range slots {
		if slot.Minutes() >= earliest {
			offered = append(offered, slot)
		}
	}

	return offered
}
