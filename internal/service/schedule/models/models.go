package models

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Period интервал работы, время в формате HH:MM
type Period struct {
	Opening string `json:"opening"`
	Closing string `json:"closing"`
}

// WeeklyPeriods периоды по дням недели
type WeeklyPeriods struct {
	Monday    []Period `json:"monday"`
	Tuesday   []Period `json:"tuesday"`
	Wednesday []Period `json:"wednesday"`
	Thursday  []Period `json:"thursday"`
	Friday    []Period `json:"friday"`
	Saturday  []Period `json:"saturday"`
	Sunday    []Period `json:"sunday"`
}

// UpdateScheduleRequest запрос на замену расписания целиком.
// Отсутствующий день считается выходным
type UpdateScheduleRequest struct {
	WeeklyPeriods
}

// ScheduleResponse ответ с расписанием
type ScheduleResponse struct {
	WeeklyPeriods
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddUnavailableDateRequest запрос на закрытие дня
type AddUnavailableDateRequest struct {
	Date   time.Time
	Reason *string
}

// UnavailableDateResponse закрытый день
type UnavailableDateResponse struct {
	Date      string    `json:"date"` // "2025-12-25"
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w WeeklyPeriods) forWeekday(day time.Weekday) []Period {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}
	return nil
}

func (w *WeeklyPeriods) setWeekday(day time.Weekday, periods []Period) {
	switch day {
	case time.Monday:
		w.Monday = periods
	case time.Tuesday:
		w.Tuesday = periods
	case time.Wednesday:
		w.Wednesday = periods
	case time.Thursday:
		w.Thursday = periods
	case time.Friday:
		w.Friday = periods
	case time.Saturday:
		w.Saturday = periods
	case time.Sunday:
		w.Sunday = periods
	}
}

// ToDomain конвертирует запрос в доменное расписание без валидации
func (r *UpdateScheduleRequest) ToDomain() domain.WeeklySchedule {
	schedule := domain.NewClosedSchedule()
	for _, day := range domain.Weekdays {
		src := r.forWeekday(day)
		periods := make([]domain.Period, 0, len(src))
		for _, p := range src {
			periods = append(periods, domain.Period{
				Opening: types.TimeString(p.Opening),
				Closing: types.TimeString(p.Closing),
			})
		}
		schedule.SetWeekday(day, periods)
	}
	return schedule
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.WeeklySchedule) *ScheduleResponse {
	resp := &ScheduleResponse{UpdatedAt: s.UpdatedAt}
	for _, day := range domain.Weekdays {
		src := s.ForWeekday(day)
		periods := make([]Period, 0, len(src))
		for _, p := range src {
			periods = append(periods, Period{Opening: p.Opening.String(), Closing: p.Closing.String()})
		}
		resp.setWeekday(day, periods)
	}
	return resp
}

// FromDomainUnavailableDates конвертирует список закрытых дней в DTO
func FromDomainUnavailableDates(dates []domain.UnavailableDate) []UnavailableDateResponse {
	resp := make([]UnavailableDateResponse, 0, len(dates))
	for _, d := range dates {
		resp = append(resp, UnavailableDateResponse{
			Date:      d.Date.Format(domain.DateFormat),
			Reason:    d.Reason,
			CreatedAt: d.CreatedAt,
		})
	}
	return resp
}
