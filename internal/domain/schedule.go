package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Weekdays порядок дней недели в расписании (понедельник первый)
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Period интервал работы внутри дня, Opening < Closing
type Period struct {
	Opening types.TimeString `json:"opening"`
	Closing types.TimeString `json:"closing"`
}

// Validate проверяет формат и порядок границ
func (p Period) Validate() error {
	if err := p.Opening.Validate(); err != nil {
		return fmt.Errorf("invalid opening: %v", err)
	}
	if err := p.Closing.Validate(); err != nil {
		return fmt.Errorf("invalid closing: %v", err)
	}
	if !p.Opening.IsBefore(p.Closing) {
		return fmt.Errorf("opening %s must be before closing %s", p.Opening, p.Closing)
	}
	return nil
}

// Overlaps возвращает true, если полуинтервалы [opening, closing) пересекаются.
// Смежные периоды (09:00-12:00 и 12:00-13:00) не пересекаются
func (p Period) Overlaps(other Period) bool {
	return p.Opening.IsBefore(other.Closing) && other.Opening.IsBefore(p.Closing)
}

// WeeklySchedule недельное расписание клиники. Пустой день означает выходной
type WeeklySchedule struct {
	Monday    []Period
	Tuesday   []Period
	Wednesday []Period
	Thursday  []Period
	Friday    []Period
	Saturday  []Period
	Sunday    []Period

	UpdatedAt time.Time
}

// NewClosedSchedule расписание, в котором все дни выходные
func NewClosedSchedule() WeeklySchedule {
	var s WeeklySchedule
	for _, day := range Weekdays {
		s.SetWeekday(day, []Period{})
	}
	return s
}

// ForWeekday возвращает периоды указанного дня недели
func (s *WeeklySchedule) ForWeekday(day time.Weekday) []Period {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	case time.Sunday:
		return s.Sunday
	default:
		return nil
	}
}

// SetWeekday заменяет периоды указанного дня недели
func (s *WeeklySchedule) SetWeekday(day time.Weekday, periods []Period) {
	switch day {
	case time.Monday:
		s.Monday = periods
	case time.Tuesday:
		s.Tuesday = periods
	case time.Wednesday:
		s.Wednesday = periods
	case time.Thursday:
		s.Thursday = periods
	case time.Friday:
		s.Friday = periods
	case time.Saturday:
		s.Saturday = periods
	case time.Sunday:
		s.Sunday = periods
	}
}

// Normalize проверяет расписание и возвращает копию с периодами,
// отсортированными по времени открытия.
// Ошибка имеет тип *ValidationError с полем вида "tuesday[1]"
func (s WeeklySchedule) Normalize() (WeeklySchedule, error) {
	result := WeeklySchedule{UpdatedAt: s.UpdatedAt}

	for _, day := range Weekdays {
		dayName := strings.ToLower(day.String())
		src := s.ForWeekday(day)

		for i, p := range src {
			if err := p.Validate(); err != nil {
				return WeeklySchedule{}, NewValidationError(fmt.Sprintf("%s[%d]", dayName, i), err.Error())
			}
		}

		periods := make([]Period, len(src))
		copy(periods, src)
		sort.SliceStable(periods, func(i, j int) bool {
			return periods[i].Opening.IsBefore(periods[j].Opening)
		})

		for i := 1; i < len(periods); i++ {
			if periods[i-1].Overlaps(periods[i]) {
				return WeeklySchedule{}, NewValidationError(
					fmt.Sprintf("%s[%d]", dayName, i),
					fmt.Sprintf("period %s-%s overlaps %s-%s",
						periods[i].Opening, periods[i].Closing, periods[i-1].Opening, periods[i-1].Closing),
				)
			}
		}

		result.SetWeekday(day, periods)
	}

	return result, nil
}
