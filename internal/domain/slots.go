package domain

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// GenerateSlots возвращает времена начала слотов длительностью slotDurationMinutes
// на указанную дату.
//
// Закрытая дата или длительность <= 0 дают пустой результат. Для каждого периода дня
// слоты идут от opening с шагом d, пока slot+d <= closing. Результат строго возрастает:
// кандидат, не превышающий предыдущий выданный слот, пропускается.
// Функция чистая, повторный вызов с теми же аргументами даёт тот же результат
func GenerateSlots(
	schedule WeeklySchedule,
	unavailable UnavailableSet,
	date time.Time,
	slotDurationMinutes int,
) []types.TimeString {
	slots := make([]types.TimeString, 0)

	if slotDurationMinutes <= 0 || unavailable.Contains(date) {
		return slots
	}

	last := -1
	for _, period := range schedule.ForWeekday(date.Weekday()) {
		opening := period.Opening.Minutes()
		closing := period.Closing.Minutes()
		if opening < 0 || closing < 0 {
			continue
		}

		for start := opening; start+slotDurationMinutes <= closing; start += slotDurationMinutes {
			if start <= last {
				continue
			}
			slot, err := types.FromMinutes(start)
			if err != nil {
				break
			}
			slots = append(slots, slot)
			last = start
		}
	}

	return slots
}

// ContainsSlot проверяет, входит ли start в список слотов
func ContainsSlot(slots []types.TimeString, start types.TimeString) bool {
	for _, s := range slots {
		if s.Equal(start) {
			return true
		}
	}
	return false
}
