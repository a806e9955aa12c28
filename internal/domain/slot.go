package domain

import "github.com/m04kA/SMC-ClinicBooking/pkg/types"

// AvailableSlot слот дня с учётом уже занятых мест
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	AvailableSpots  int // capacity - активные бронирования, не меньше 0
	TotalSpots      int // вместимость слота
}

// EndTime время окончания слота.
// Слот не выходит за время закрытия, поэтому конец всегда в пределах суток
func (s *AvailableSlot) EndTime() types.TimeString {
	end, err := types.FromMinutes(s.StartTime.EndMinutes(s.DurationMinutes))
	if err != nil {
		return ""
	}
	return end
}

// BookedSpots количество занятых мест
func (s *AvailableSlot) BookedSpots() int {
	return s.TotalSpots - s.AvailableSpots
}

// IsFull returns true if the slot has no available spots
func (s *AvailableSlot) IsFull() bool {
	return s.AvailableSpots <= 0
}
